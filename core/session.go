package core

const (
	namespacePrefix = "study_notes_"
	guestNamespace  = "guest_user"
)

// Session is the identity supplied by the upstream identity provider.
// It is read as-is: it is never issued nor verified here.
type Session struct {
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

func NewSession(name, email string) Session {
	return Session{UserName: CleanString(name), UserEmail: CleanString(email, true /* lower */)}
}

func (s Session) IsGuest() bool {
	return CleanString(s.UserEmail) == ""
}

// Namespace returns the storage key owning this session's notes.
func (s Session) Namespace() string {
	email := CleanString(s.UserEmail, true /* lower */)
	if email == "" {
		email = guestNamespace
	}
	return namespacePrefix + email
}
