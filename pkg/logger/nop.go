package logger

// Nop ничего не пишет. Используется в тестах.
type Nop struct{}

func NewNop() *Nop { return &Nop{} }

func (Nop) Debugf(string, ...any)        {}
func (Nop) Infof(string, ...any)         {}
func (Nop) Warnf(string, ...any)         {}
func (Nop) Errorf(error, string, ...any) {}
func (n Nop) With(...any) Logger         { return n }
