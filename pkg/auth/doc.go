// Package auth provides authentication for slice servers.
//
// # Overview
//
// Two mechanisms are supported, matching what deployments actually run:
//
//   - Device flow: [Flow] implements the OAuth 2.0 device authorization
//     grant against a configurable authority. The user visits a URL,
//     enters a short code, and the CLI polls until a token is issued.
//   - Shared key: [SignSharedKey] mints an HS256 token from a key both
//     sides know. Used for service-to-service access and the demo server.
//
// # Device Flow
//
//	flow := auth.NewFlow(clientID, authority)
//	code, err := flow.RequestDeviceCode(ctx)
//	// show code.UserCode and code.VerificationURI to the user
//	token, err := flow.PollForToken(ctx, code.DeviceCode, code.Interval)
//
// # Shared Key
//
//	tok, err := auth.SignSharedKey(key, "batch-job", time.Hour)
//	sub, err := auth.VerifySharedKey(key, tok)
//
// Tokens carry standard registered claims (sub, iat, nbf, exp) and are
// rejected outside their validity window or under a different key.
package auth
