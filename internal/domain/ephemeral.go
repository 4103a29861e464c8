package domain

// Key builders for the ephemeral store. Two record kinds live there:
//
//   otp:<email>     -> pending OTP code, 5 minute TTL. At most one live OTP
//                      per email; a re-request overwrites the previous code.
//   regtoken:<id>   -> email bound to a registration credential, TTL equal to
//                      the credential lifetime. Presence is the proof the
//                      credential has not been redeemed yet; absence means
//                      "already used or never issued" and both are treated
//                      identically.

func OTPKey(email string) string { return "otp:" + email }

func CredentialKey(credentialID string) string { return "regtoken:" + credentialID }
