package tools

// Option configures the shared tool Config
type Option func(c *Config)

func WithTitle(title string) Option {
	return func(c *Config) {
		c.SetTitle(title)
	}
}

func WithDescription(desc string) Option {
	return func(c *Config) {
		c.SetDescription(desc)
	}
}

func WithStartHook(fn StartHook) Option {
	return func(c *Config) {
		c.SetStartHook(fn)
	}
}

func WithEndHook(fn EndHook) Option {
	return func(c *Config) {
		c.SetEndHook(fn)
	}
}

func WithErrorHook(fn ErrorHook) Option {
	return func(c *Config) {
		c.SetErrorHook(fn)
	}
}
