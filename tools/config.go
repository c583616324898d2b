package tools

import "context"

// Config is embedded by every tool
type Config struct {
	// title the default title of the tool
	title string
	// description the default description of the tool
	description string
	startHook   StartHook
	endHook     EndHook
	errorHook   ErrorHook
}

func (c *Config) SetTitle(v string) {
	c.title = v
}

func (c Config) Title() string {
	return c.title
}

func (c *Config) SetDescription(v string) {
	c.description = v
}

func (c Config) Description() string {
	return c.description
}

func (c *Config) SetStartHook(fn StartHook) {
	c.startHook = fn
}

func (c *Config) SetEndHook(fn EndHook) {
	c.endHook = fn
}

func (c *Config) SetErrorHook(fn ErrorHook) {
	c.errorHook = fn
}

// Trace calls the start hook and returns a func which reports the result to the end or error hook
func (c Config) Trace(ctx context.Context, tool ITool, input any) func(output any, err error) {
	if c.startHook != nil {
		c.startHook(ctx, tool, input)
	}
	return func(output any, err error) {
		if err != nil {
			if c.errorHook != nil {
				c.errorHook(ctx, tool, input, err)
			}
			return
		}
		if c.endHook != nil {
			c.endHook(ctx, tool, input, output)
		}
	}
}
