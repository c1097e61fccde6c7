package validation

// Error marks a client-correctable input problem. The HTTP boundary maps
// it to a 400 and surfaces the text verbatim.
type Error string

func (e Error) Error() string {
	return string(e)
}
