/*
Package authsdk is a client for GoTrue-compatible auth services (Supabase Auth
and the passage emulator).

# Overview

An SDKClient owns at most one user session. It restores the session from a
SessionStorage on Start, refreshes it in the background before it expires and
publishes every transition on a status stream:

	client := authsdk.NewSDKClient("http://localhost:9999", apiKey)
	client.Storage = myStorage
	client.Start(ctx)
	defer client.Close()

	statuses, cancel := client.Subscribe()
	defer cancel()
	for st := range statuses {
		fmt.Println(st.Kind)
	}

# Status Stream

The stream starts in StatusInitializing and leaves it once Start has loaded
the persisted session. New subscribers first receive the latest status, then
each transition:

  - StatusAuthenticated: a session was installed or refreshed
  - StatusNotAuthenticated: no session, sign-out, or a rejected refresh token
  - StatusRefreshFailure: refresh failed for a transient reason; the session
    is kept and retried on the next tick

Subscriber channels are buffered. When a subscriber falls behind, the oldest
undelivered status is dropped so the latest one is always delivered.

# Authentication

	session, err := client.SignInWithPassword(ctx, email, password)
	if authsdk.IsEmailNotConfirmed(err) {
		_ = client.ResendSignup(ctx, email)
	}

	// Federated sign-in: the ID token carries sha256hex(rawNonce), the
	// server receives rawNonce.
	session, err = client.SignInWithIDToken(ctx, "google", idToken, rawNonce)

Sign-up, email OTP verification, password recovery and password updates
follow the GoTrue endpoints of the same names. UserExists queries the public
users table through the REST endpoint.

# Error Handling

Non-2xx responses are returned as *APIError carrying the HTTP status, the
GoTrue error_code and the message. Use errors.As, or the IsEmailNotConfirmed
and IsUserAlreadyExists helpers.

# Thread Safety

SDKClient is safe for concurrent use once configured. Set exported fields
before calling Start.
*/
package authsdk
