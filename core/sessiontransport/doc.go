// Package sessiontransport moves sessions between the session.Manager and
// HTTP cookies.
//
// The transport is the only place Set-Cookie headers are produced. Load reads
// the inbound cookie through the manager's state machine and applies the
// outcome to the response: a rotated session gets its new cookie, anything
// unresolvable gets a fresh guest cookie. Login and Logout are the explicit
// session replacement operations handlers reach for; both set the
// replacement's cookie and delete the replaced user session's row.
//
// Cookie attributes: Path=/, HttpOnly, SameSite (Lax by default), optional
// Secure. Max-Age is set only for authenticated sessions; guest cookies stay
// session-scoped so an unauthenticated browser forgets them on close.
package sessiontransport
