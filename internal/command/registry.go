package command

// Registry holds the installed commands in registration order.
type Registry struct {
	byName map[string]Command
	order  []Command
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]Command{}}
}

// Register installs a command, replacing any previous one with the same name.
func (r *Registry) Register(cmd Command) {
	if _, exists := r.byName[cmd.Name()]; exists {
		for i, c := range r.order {
			if c.Name() == cmd.Name() {
				r.order[i] = cmd
				break
			}
		}
	} else {
		r.order = append(r.order, cmd)
	}
	r.byName[cmd.Name()] = cmd
}

func (r *Registry) Get(name string) (Command, bool) {
	cmd, ok := r.byName[name]
	return cmd, ok
}

func (r *Registry) All() []Command {
	out := make([]Command, len(r.order))
	copy(out, r.order)
	return out
}
