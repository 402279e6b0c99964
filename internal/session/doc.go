// Package session owns the in-memory authentication state of the client.
//
// A Manager moves between three states:
//
//	Uninitialized -> Unauthenticated   boot read found nothing (or failed)
//	Uninitialized -> Authenticated     boot read found a token
//	Unauthenticated -> Authenticated   Login
//	Authenticated -> Unauthenticated   Logout
//
// Nothing returns to Uninitialized. The Manager persists the token through a
// tokenstore.Store and publishes every change to its subscribers. It does not
// know about screens; navigation subscribes like any other observer.
package session
