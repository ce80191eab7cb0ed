package ptr

// Str returns a pointer to the string passed as argument.
func Str(str string) *string {
	return &str
}

// Int returns a pointer to the int passed as argument.
func Int(i int) *int {
	return &i
}

// Int64 returns a pointer to the int64 passed as argument.
func Int64(i int64) *int64 {
	return &i
}

// Bool returns a pointer to the bool passed as argument.
func Bool(b bool) *bool {
	return &b
}
