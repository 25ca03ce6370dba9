package longjump

type Thread struct{}

type Scope struct{ thread *Thread }

func NewThread() *Thread { return &Thread{} }

func NewScope(t *Thread) *Scope { return &Scope{thread: t} }

func (s *Scope) Set(body func()) int { body(); return 0 }

func (s *Scope) Close() {}

func (s *Scope) Jump(status int, err error) {}
