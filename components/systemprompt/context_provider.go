package systemprompt

// ContextProvider is an interface that defines the title and info of a context provider
type ContextProvider interface {
	Title() string
	Info() string
}

// Section is a static ContextProvider
type Section struct {
	title string
	info  string
}

var _ ContextProvider = (*Section)(nil)

// NewSection returns a new Section
func NewSection(title string, info string) *Section {
	return &Section{
		title: title,
		info:  info,
	}
}

func (s Section) Title() string {
	return s.title
}

func (s Section) Info() string {
	return s.info
}
