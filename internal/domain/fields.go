package domain

// AODValues are the direct sun optical depth measurements.
type AODValues struct {
	AirMass                float64
	AOD340                 float64
	AOD380                 float64
	AOD440                 float64
	AOD500                 float64
	AOD675                 float64
	AOD870                 float64
	AOD1020                float64
	AOD1640                float64
	WaterVapor             float64
	AngstromExponent440870 float64
}

func (v *AODValues) fields() []Field {
	return []Field{
		{"air_mass", "Air Mass", &v.AirMass},
		{"aod_340nm", "AOD_340nm", &v.AOD340},
		{"aod_380nm", "AOD_380nm", &v.AOD380},
		{"aod_440nm", "AOD_440nm", &v.AOD440},
		{"aod_500nm", "AOD_500nm(int)", &v.AOD500},
		{"aod_675nm", "AOD_675nm", &v.AOD675},
		{"aod_870nm", "AOD_870nm", &v.AOD870},
		{"aod_1020nm", "AOD_1020nm", &v.AOD1020},
		{"aod_1640nm", "AOD_1640nm", &v.AOD1640},
		{"water_vapor_cm", "Water Vapor(cm)", &v.WaterVapor},
		{"angstrom_exponent_440_870", "440-870nm_Angstrom_Exponent", &v.AngstromExponent440870},
	}
}

// AODDeviations are the standard deviations of daily and series averages.
type AODDeviations struct {
	STD340                 float64
	STD380                 float64
	STD440                 float64
	STD500                 float64
	STD675                 float64
	STD870                 float64
	STD1020                float64
	STD1640                float64
	WaterVapor             float64
	AngstromExponent440870 float64
}

func (v *AODDeviations) fields() []Field {
	return []Field{
		{"std_340nm", "STD_340nm", &v.STD340},
		{"std_380nm", "STD_380nm", &v.STD380},
		{"std_440nm", "STD_440nm", &v.STD440},
		{"std_500nm", "STD_500nm(int)", &v.STD500},
		{"std_675nm", "STD_675nm", &v.STD675},
		{"std_870nm", "STD_870nm", &v.STD870},
		{"std_1020nm", "STD_1020nm", &v.STD1020},
		{"std_1640nm", "STD_1640nm", &v.STD1640},
		{"std_water_vapor_cm", "STD_Water_Vapor(cm)", &v.WaterVapor},
		{"std_angstrom_exponent_440_870", "STD_440-870nm_Angstrom_Exponent", &v.AngstromExponent440870},
	}
}

// SDAValues are the spectral deconvolution retrievals at 500nm and the input
// optical depths they were fitted from.
type SDAValues struct {
	JulianDay                   float64
	TotalAOD500                 float64
	FineModeAOD500              float64
	CoarseModeAOD500            float64
	FineModeFraction500         float64
	CoarseModeFraction500       float64
	RegressionDTauA             float64
	RMSEFineModeAOD500          float64
	RMSECoarseModeAOD500        float64
	RMSEFMFAndCMFFractions500   float64
	AngstromExponentTotal500    float64
	DAEDlnWavelengthTotal500    float64
	AEFineMode500               float64
	DAEDlnWavelengthFineMode500 float64
	InputAOD870                 float64
	InputAOD675                 float64
	InputAOD500                 float64
	InputAOD440                 float64
	InputAOD380                 float64
}

func (v *SDAValues) fields() []Field {
	return []Field{
		{"julian_day", "Julian_Day", &v.JulianDay},
		{"total_aod_500nm", "Total_AOD_500nm(tau_a)", &v.TotalAOD500},
		{"fine_mode_aod_500nm", "Fine_Mode_AOD_500nm(tau_f)", &v.FineModeAOD500},
		{"coarse_mode_aod_500nm", "Coarse_Mode_AOD_500nm(tau_c)", &v.CoarseModeAOD500},
		{"fine_mode_fraction_500nm", "FineModeFraction_500nm(eta)", &v.FineModeFraction500},
		{"coarse_mode_fraction_500nm", "CoarseModeFraction_500nm(1_eta)", &v.CoarseModeFraction500},
		{"regression_dtau_a", "2nd_Order_Reg_Fit_Error_Total_AOD_500nm(regression_dtau_a)", &v.RegressionDTauA},
		{"rmse_fine_mode_aod_500nm", "RMSE_Fine_Mode_AOD_500nm(Dtau_f)", &v.RMSEFineModeAOD500},
		{"rmse_coarse_mode_aod_500nm", "RMSE_Coarse_Mode_AOD_500nm(Dtau_c)", &v.RMSECoarseModeAOD500},
		{"rmse_fmf_and_cmf_fractions_500nm", "RMSE_FMF_and_CMF_Fractions_500nm(Deta)", &v.RMSEFMFAndCMFFractions500},
		{"angstrom_exponent_total_500nm", "Angstrom_Exponent(AE)_Total_500nm(alpha)", &v.AngstromExponentTotal500},
		{"dae_dln_wavelength_total_500nm", "dAE/dln(wavelength)_Total_500nm(alphap)", &v.DAEDlnWavelengthTotal500},
		{"ae_fine_mode_500nm", "AE_Fine_Mode_500nm(alpha_f)", &v.AEFineMode500},
		{"dae_dln_wavelength_fine_mode_500nm", "dAE/dln(wavelength)_Fine_Mode_500nm(alphap_f)", &v.DAEDlnWavelengthFineMode500},
		{"aod_870nm", "870nm_Input_AOD", &v.InputAOD870},
		{"aod_675nm", "675nm_Input_AOD", &v.InputAOD675},
		{"aod_500nm", "500nm(int)_Input_AOD", &v.InputAOD500},
		{"aod_440nm", "440nm_Input_AOD", &v.InputAOD440},
		{"aod_380nm", "380nm_Input_AOD", &v.InputAOD380},
	}
}

// SDAGeometry is the sun geometry reported with individual SDA retrievals.
type SDAGeometry struct {
	SolarZenithAngle float64
	AirMass          float64
}

func (v *SDAGeometry) fields() []Field {
	return []Field{
		{"solar_zenith_angle", "Solar_Zenith_Angle", &v.SolarZenithAngle},
		{"air_mass", "Air_Mass", &v.AirMass},
	}
}

// SDADeviations are the standard deviations of daily and series SDA averages.
type SDADeviations struct {
	TotalAOD500                 float64
	FineModeAOD500              float64
	CoarseModeAOD500            float64
	FineModeFraction500         float64
	CoarseModeFraction500       float64
	RegressionDTauA             float64
	RMSEFineModeAOD500          float64
	RMSECoarseModeAOD500        float64
	RMSEFMFAndCMFFractions500   float64
	AngstromExponentTotal500    float64
	DAEDlnWavelengthTotal500    float64
	AEFineMode500               float64
	DAEDlnWavelengthFineMode500 float64
	InputAOD870                 float64
	InputAOD675                 float64
	InputAOD500                 float64
	InputAOD440                 float64
	InputAOD380                 float64
}

func (v *SDADeviations) fields() []Field {
	return []Field{
		{"stdev_total_aod_500nm", "STDEV-Total_AOD_500nm(tau_a)", &v.TotalAOD500},
		{"stdev_fine_mode_aod_500nm", "STDEV-Fine_Mode_AOD_500nm(tau_f)", &v.FineModeAOD500},
		{"stdev_coarse_mode_aod_500nm", "STDEV-Coarse_Mode_AOD_500nm(tau_c)", &v.CoarseModeAOD500},
		{"stdev_fine_mode_fraction_500nm", "STDEV-FineModeFraction_500nm(eta)", &v.FineModeFraction500},
		{"stdev_coarse_mode_fraction_500nm", "STDEV-CoarseModeFraction_500nm(1_eta)", &v.CoarseModeFraction500},
		{"stdev_regression_dtau_a", "STDEV-2nd_Order_Reg_Fit_Error_Total_AOD_500nm(regression_dtau_a)", &v.RegressionDTauA},
		{"stdev_rmse_fine_mode_aod_500nm", "STDEV-RMSE_Fine_Mode_AOD_500nm(Dtau_f)", &v.RMSEFineModeAOD500},
		{"stdev_rmse_coarse_mode_aod_500nm", "STDEV-RMSE_Coarse_Mode_AOD_500nm(Dtau_c)", &v.RMSECoarseModeAOD500},
		{"stdev_rmse_fmf_and_cmf_fractions_500nm", "STDEV-RMSE_FMF_and_CMF_Fractions_500nm(Deta)", &v.RMSEFMFAndCMFFractions500},
		{"stdev_angstrom_exponent_total_500nm", "STDEV-Angstrom_Exponent(AE)_Total_500nm(alpha)", &v.AngstromExponentTotal500},
		{"stdev_dae_dln_wavelength_total_500nm", "STDEV-dAE/dln(wavelength)_Total_500nm(alphap)", &v.DAEDlnWavelengthTotal500},
		{"stdev_ae_fine_mode_500nm", "STDEV-AE_Fine_Mode_500nm(alpha_f)", &v.AEFineMode500},
		{"stdev_dae_dln_wavelength_fine_mode_500nm", "STDEV-dAE/dln(wavelength)_Fine_Mode_500nm(alphap_f)", &v.DAEDlnWavelengthFineMode500},
		{"stdev_aod_870nm", "STDEV-870nm_Input_AOD", &v.InputAOD870},
		{"stdev_aod_675nm", "STDEV-675nm_Input_AOD", &v.InputAOD675},
		{"stdev_aod_500nm", "STDEV-500nm(int)_Input_AOD", &v.InputAOD500},
		{"stdev_aod_440nm", "STDEV-440nm_Input_AOD", &v.InputAOD440},
		{"stdev_aod_380nm", "STDEV-380nm_Input_AOD", &v.InputAOD380},
	}
}
