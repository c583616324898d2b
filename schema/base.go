package schema

// Base is a base schema
type Base struct{}

func (Base) schema() {}
