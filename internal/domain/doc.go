// Package domain converts wet/dry-bulb psychrometer readings into relative humidity.
//
// # Data Source
//
// Humidity comes from the VIT-1 psychrometer reference table, embedded from
// data/vit1.csv and versioned by [DatasetVersion]. The table is parsed once at
// startup; a malformed dataset is fatal because the service cannot operate
// without its calibration data.
//
// # Table Conventions
//
// Axes:
//
//	Rows:    dry-bulb temperature, degrees C, uniform step (1.0 in VIT-1).
//	Columns: depression ΔT = t_dry - t_wet, degrees C, uniform step (0.5 in VIT-1).
//	Cells:   relative humidity, percent, each in [0, 100].
//
// CSV layout:
//
//	# comment lines are ignored
//	t_dry,0.0,0.5,1.0,...       header: label, then depression keys
//	10,100,94,89,...            one line per dry-bulb key
//
// Coverage of the embedded dataset is 10–30 °C dry-bulb and 0–10 °C depression.
// Queries outside the covered domain are never extrapolated; they report
// [ErrOutOfRange] and the caller is told an analytic formula would be needed.
//
// # Interpolation
//
// Exact grid points return the stored cell untouched. A query aligned with one
// axis is interpolated linearly along the other; a query between grid points
// on both axes is blended bilinearly from the four surrounding cells. Both
// intervals are closed, so the last key on each axis is inside the table.
// Results are clamped to [0, 100] and rounded to 0.1 % by the [Calculator].
//
// # Transcription Grammar
//
// The vision collaborator answers in a fixed line grammar:
//
//	СУХОЙ: 22.0       dry-bulb reading
//	ВЛАЖНЫЙ: 19.0     wet-bulb reading
//	ОШИБКА: <text>    the instrument could not be read
//
// Unknown lines are ignored. A reply missing either reading is rejected with
// [ErrMalformedTranscription]; it is never turned into a zero pair.
package domain
