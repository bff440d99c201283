package common

type Module string

const (
	ModuleDunes Module = "dunes"
)

func (m Module) String() string {
	return string(m)
}
