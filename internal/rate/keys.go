package rate

const (
	loginEmailPrefix = "ml:e:"
	loginIPPrefix    = "ml:ip:"
)
