package client

// TokenProvider supplies the current bearer token. ok is false when no token
// is set. *tokencache.Cache is the usual implementation.
type TokenProvider interface {
	Token() (token string, ok bool)
}

// CredentialFunc adapts a TokenProvider into the credential callback the API
// client calls on every request. It never fails: a missing token, or a nil
// provider, reads as "".
func CredentialFunc(p TokenProvider) func() string {
	return func() string {
		if p == nil {
			return ""
		}
		token, ok := p.Token()
		if !ok {
			return ""
		}
		return token
	}
}
