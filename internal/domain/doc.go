// Package domain models the daily weather observation table used to train a
// "will it rain tomorrow" classifier, and the preprocessing applied to it.
//
// # Data Source
//
// The input is a CSV of daily observations, one row per station-day, in the
// layout of the Australian Bureau of Meteorology "weatherAUS" extracts:
//
//	Date,Location,MinTemp,MaxTemp,Rainfall,Evaporation,Sunshine,WindGustDir,
//	WindGustSpeed,WindDir9am,WindDir3pm,WindSpeed9am,WindSpeed3pm,Humidity9am,
//	Humidity3pm,Pressure9am,Pressure3pm,Cloud9am,Cloud3pm,Temp9am,Temp3pm,
//	RainToday,RISK_MM,RainTomorrow
//
// The schema is expected but not enforced. Extracts routinely omit Date and
// Location (single-station files), and files exported from pandas carry a
// leading unnamed index column.
//
// # Conventions
//
// Missing values:
//
//	The pandas default NA tokens ("", "NA", "NaN", "null", "#N/A", ...) mark a
//	missing cell. See [naTokens].
//
// Wind directions:
//
//	16-point compass labels: N, NNE, NE, ENE, E, ESE, SE, SSE, S, SSW, SW,
//	WSW, W, WNW, NW, NNW. They are encoded as categories, not angles.
//
// Rain flags:
//
//	RainToday and RainTomorrow are "Yes"/"No". Label encoding sorts classes,
//	so No=0 and Yes=1.
//
// RISK_MM:
//
//	Next-day rainfall in millimetres. It leaks the target but is kept as a
//	feature to match the reference preparation.
//
// # Column Handling
//
// Every step that references a column first checks that it exists. A missing
// column yields a [Warning] and the step is skipped for that column; only the
// target column is mandatory ([ErrMissingTarget]).
package domain
