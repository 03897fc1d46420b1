// Package domain models Maritime Aerosol Network (MAN) observation files and
// the typed records loaded from them.
//
// # Data Source
//
// MAN data is distributed by AERONET as a single gzip tarball of plain text
// files, one per cruise and product. Files are not self-describing: the
// product is encoded in the filename suffix and the per-cruise metadata sits in
// a five line preamble above the data rows.
//
// # File Naming
//
// The suffix selects the dataset family, frequency and level:
//
//	<cruise>_all_points.lev10     AOD, Point,  level 1.0
//	<cruise>_daily.lev15          AOD, Daily,  level 1.5
//	<cruise>_series.ONEILL_20     SDA, Series, level 2.0
//
// ".levNN" files carry direct aerosol optical depth (AOD) measurements;
// ".ONEILL_NN" files carry the spectral deconvolution algorithm (SDA) fine and
// coarse mode retrievals. Daily and series products exist for levels 1.5 and
// 2.0 only, so there are fourteen known combinations (see [Datasets]).
//
// # Preamble
//
//	line 1  product description ("AERONET Version 3; Level 1.5 Maritime ...")
//	line 2  cruise name, followed by comma separated extras
//	line 3  usage notice
//	line 4  PI=<name>,Email=<address>
//	line 5  column header
//
// The archive mixes UTF-8 and Latin-1 files. Decoding tries UTF-8 first and
// falls back to ISO 8859-1, which maps every byte to a rune and never fails.
//
// # Data Conventions
//
// Dates are written dd:mm:yyyy and are stored as ISO dates. Times are
// hh:mm:ss. Missing or invalid measurements use the sentinel -999.0, which is
// also what a non-numeric cell becomes after mapping. Rows are plain comma
// separated values without quoting.
//
// # Record Identity
//
// A record's key is a SHA-256 prefix over schema, level, site, date, time and
// coordinates. Reloading the same row yields the same key, so writes are
// idempotent (ON CONFLICT DO NOTHING) without coordination between workers.
// See [RecordKey].
package domain
