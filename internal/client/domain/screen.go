package domain

// Screen is a navigation route name.
type Screen string

const (
	ScreenLogin          Screen = "login"
	ScreenSignUp         Screen = "signup"
	ScreenResetPassword  Screen = "resetPassword"
	ScreenSetNewPassword Screen = "setNewPassword"
	ScreenOTPVerify      Screen = "otpVerify"
	ScreenHome           Screen = "home"
)

// OTPPurpose is the route that opened the OTP screen.
type OTPPurpose string

const (
	PurposeSignUp OTPPurpose = "signup"
	PurposeLogin  OTPPurpose = "login"
	PurposeReset  OTPPurpose = "reset"
)

// Valid reports whether p is a known purpose.
func (p OTPPurpose) Valid() bool {
	switch p {
	case PurposeSignUp, PurposeLogin, PurposeReset:
		return true
	}
	return false
}

// Destination is the screen shown after a successful verification.
func (p OTPPurpose) Destination() Screen {
	switch p {
	case PurposeLogin:
		return ScreenHome
	case PurposeReset:
		return ScreenSetNewPassword
	default:
		return ScreenLogin
	}
}

// PendingResetFlag is the local storage key set while a password reset is
// between OTP verification and the new password being saved.
const PendingResetFlag = "pending_reset_password"

// GoogleProvider is the provider name for Google ID tokens.
const GoogleProvider = "google"

// EmailProvider is the provider name for email/password accounts.
const EmailProvider = "email"
