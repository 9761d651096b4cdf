package domain

import "strings"

// Credentials is the pair of opaque strings needed to query the usage
// endpoint. The application only ever holds a transient copy; the secret
// store owns the persisted values.
type Credentials struct {
	SessionKey string
	OrgID      string
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.SessionKey) == "" || strings.TrimSpace(c.OrgID) == "" {
		return ErrEmptyCredentials
	}

	return nil
}
