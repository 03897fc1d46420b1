package domain

import "strings"

const (
	testSite       = "Polarstern_24_0"
	testOperator   = "Alexander Smirnov"
	testEmail      = "alexander.smirnov-1@nasa.gov"
	aodDailyHeader = "Date(dd:mm:yyyy),Time(hh:mm:ss),Air Mass,Latitude,Longitude,AOD_340nm,AOD_380nm,AOD_440nm,AOD_500nm(int),AOD_675nm,AOD_870nm,AOD_1020nm,AOD_1640nm,Water Vapor(cm),440-870nm_Angstrom_Exponent,STD_340nm,STD_380nm,STD_440nm,STD_500nm(int),STD_675nm,STD_870nm,STD_1020nm,STD_1640nm,STD_Water_Vapor(cm),STD_440-870nm_Angstrom_Exponent,Number_of_Observations,Last_Processing_Date(dd:mm:yyyy),AERONET_Number,Microtops_Number"
	aodDailyRow1   = "25:03:2021,12:30:00,1.234,45.0,12.5,0.1,0.2,0.3,0.4,0.5,0.6,0.7,N/A,1.5,1.2,0.01,0.02,0.03,0.04,0.05,0.06,0.07,0.08,0.09,0.10,12,01:04:2021,451,7"
	aodDailyRow2   = "26:03:2021,13:00:00,1.1,45.5,13.0,0.1,0.2,0.3,0.4,0.5,0.6,0.7,0.8,1.5,1.2,0.01,0.02,0.03,0.04,0.05,0.06,0.07,0.08,0.09,0.10,9,01:04:2021,451,7"
)

func preamble(level string) []string {
	return []string{
		"AERONET Version 3; Level " + level + " Maritime Aerosol Network (MAN) Measurements: These data are cloud cleared and quality assured",
		testSite + ",Ship Polarstern",
		"Due to the research and development phase characterizing AERONET-MAN, use of data requires offering co-authorship to Principal Investigators.",
		"PI=" + testOperator + ",Email=" + testEmail,
	}
}

func aodDailyFile(rows ...string) string {
	lines := append(preamble("1.5"), aodDailyHeader)
	lines = append(lines, rows...)
	return strings.Join(lines, "\n") + "\n"
}
