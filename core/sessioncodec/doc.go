// Package sessioncodec implements the bit-exact binary cookie encoding shared
// by guest and authenticated sessions.
//
// An authenticated cookie is id(18) ‖ key(18) ‖ mac(18) encoded as standard
// base64; a guest cookie is the bare 18-byte id. The MAC binds id and key to
// the deployment secret so a client cannot mint or splice authenticated
// cookies, and its verification is timing-safe.
//
// Decode never returns an error: every malformed input degrades to "no
// cookie", which keeps the codec free of oracle behavior — a probing client
// learns nothing beyond "the server forgot me".
//
// Usage:
//
//	codec, err := sessioncodec.New(macKey)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	value := codec.EncodeUser(sess.ID, sess.Key)
//	// ... set as cookie, later:
//	dec, ok := codec.Decode(value)
//	if !ok {
//		// treat as no session
//	}
package sessioncodec
