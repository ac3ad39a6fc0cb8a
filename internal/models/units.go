package models

// Units is the display temperature unit.
type Units string

const (
	Celsius    Units = "C"
	Fahrenheit Units = "F"
)

// Valid reports whether u is a known unit.
func (u Units) Valid() bool {
	return u == Celsius || u == Fahrenheit
}

// Convert turns a Celsius value into the display unit.
func (u Units) Convert(c float64) float64 {
	if u == Fahrenheit {
		return (c * 9 / 5) + 32
	}
	return c
}

// FrequencyUnit is the unit of the log interval and of the chart X axis.
type FrequencyUnit string

const (
	Seconds FrequencyUnit = "sec"
	Minutes FrequencyUnit = "min"
)

// Valid reports whether f is a known frequency unit.
func (f FrequencyUnit) Valid() bool {
	return f == Seconds || f == Minutes
}

// TimeFactor returns the number of seconds in one unit.
func (f FrequencyUnit) TimeFactor() float64 {
	if f == Minutes {
		return 60
	}
	return 1
}
