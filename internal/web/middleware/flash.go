package middleware

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const sessionName = "gowiki-session"

// NewCookieStore creates the session store backing flash messages.
func NewCookieStore(key string) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(key))
	store.Options.HttpOnly = true
	store.Options.Path = "/"
	store.Options.SameSite = http.SameSiteLaxMode
	return store
}

// Flashes stores one-shot notices in the session that are shown on the next
// rendered view.
type Flashes struct {
	Store sessions.Store
}

// Add queues a notice for the next view.
func (f *Flashes) Add(w http.ResponseWriter, r *http.Request, message string) error {
	session, err := f.Store.Get(r, sessionName)
	if err != nil && session == nil {
		return err
	}
	session.AddFlash(message)
	return session.Save(r, w)
}

// Peek returns the queued notices without clearing them, so they survive a
// view that fails to render. An unreadable session yields no notices.
func (f *Flashes) Peek(r *http.Request) []string {
	session, err := f.Store.Get(r, sessionName)
	if err != nil && session == nil {
		return nil
	}

	flashes := session.Flashes()
	messages := make([]string, 0, len(flashes))
	for _, flash := range flashes {
		if msg, ok := flash.(string); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}

// Clear removes the queued notices from the session.
func (f *Flashes) Clear(w http.ResponseWriter, r *http.Request) error {
	session, err := f.Store.Get(r, sessionName)
	if err != nil && session == nil {
		return err
	}
	session.Flashes()
	return session.Save(r, w)
}
