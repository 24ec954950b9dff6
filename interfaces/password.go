package interfaces

type PasswordGenerator interface {
	Generate(length int) (string, error)
}
