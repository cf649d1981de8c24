//go:build !unix

package auth

func lock(path string) (func(), error) {
	return func() {}, nil
}
