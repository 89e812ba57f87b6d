package flow

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/aussiebroadwan/passage/internal/client/domain"
	"github.com/aussiebroadwan/passage/internal/client/store"
)

// OTPLength is the number of digits in an emailed code.
const OTPLength = 6

const (
	// NoDigit marks an empty slot.
	NoDigit = -1
	// NoFocus means no slot is focused.
	NoFocus = -1
)

// Validity is the tri-state result of the last verification.
type Validity int

const (
	ValidityUnknown Validity = iota
	ValidityValid
	ValidityInvalid
)

// OTPState is the code entry grid.
type OTPState struct {
	Code         [OTPLength]int
	FocusedIndex int
	Validity     Validity

	IsLoading bool
}

// Entered returns the set digits joined in slot order.
func (s OTPState) Entered() string {
	var b strings.Builder
	for _, d := range s.Code {
		if d != NoDigit {
			b.WriteString(strconv.Itoa(d))
		}
	}
	return b.String()
}

// OTP verifies an emailed code for the account the previous screen named.
type OTP struct {
	runner

	backend domain.Backend
	flags   store.Flags
	email   string
	purpose domain.OTPPurpose

	mu    sync.Mutex
	state OTPState
}

func NewOTP(backend domain.Backend, flags store.Flags, email string, purpose domain.OTPPurpose, logger *slog.Logger) *OTP {
	f := &OTP{
		runner:  newRunner("otp_verification", logger),
		backend: backend,
		flags:   flags,
		email:   email,
		purpose: purpose,
	}
	f.state.FocusedIndex = NoFocus
	for i := range f.state.Code {
		f.state.Code[i] = NoDigit
	}
	return f
}

func (f *OTP) State() OTPState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *OTP) Email() string { return f.email }

func (f *OTP) Purpose() domain.OTPPurpose { return f.purpose }

// Destination is the screen to show once the code is valid.
func (f *OTP) Destination() domain.Screen {
	return f.purpose.Destination()
}

// EnterScreen records that a password reset is in progress when the screen
// was opened from the reset flow, so an abandoned reset is signed out at the
// next start.
func (f *OTP) EnterScreen(ctx context.Context) error {
	if f.purpose != domain.PurposeReset {
		return nil
	}
	if err := f.flags.SetFlag(ctx, domain.PendingResetFlag, true); err != nil {
		f.logError("set_pending_reset", err)
		return err
	}
	return nil
}

// EnterDigit sets slot index to digit, or clears it when digit is NoDigit.
// Focus advances only when a digit lands in a previously empty slot.
func (f *OTP) EnterDigit(digit, index int) {
	if index < 0 || index >= OTPLength || digit < NoDigit || digit > 9 {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	prev := f.state.Code
	f.state.Code[index] = digit
	if digit != NoDigit && prev[index] == NoDigit {
		f.state.FocusedIndex = nextFocus(prev, f.state.FocusedIndex)
	}
	f.state.Validity = ValidityUnknown
}

// nextFocus is the first empty slot after focused. With no empty slot left
// focus stays; from the last slot or no focus it becomes NoFocus.
func nextFocus(code [OTPLength]int, focused int) int {
	if focused == NoFocus || focused >= OTPLength-1 {
		return NoFocus
	}
	for i := focused + 1; i < OTPLength; i++ {
		if code[i] == NoDigit {
			return i
		}
	}
	return focused
}

// ChangeFocus records the focused slot.
func (f *OTP) ChangeFocus(index int) {
	if index < NoFocus || index >= OTPLength {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.FocusedIndex = index
}

// Backspace moves focus one slot left, floored at the first slot, and clears
// the newly focused slot.
func (f *OTP) Backspace() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.FocusedIndex == NoFocus {
		return
	}
	prev := max(f.state.FocusedIndex-1, 0)
	f.state.Code[prev] = NoDigit
	f.state.FocusedIndex = prev
}

// Verify submits the entered digits. The channel yields Success or Failure;
// the outcome is also recorded in Validity.
func (f *OTP) Verify(ctx context.Context) <-chan Event {
	f.mu.Lock()
	if f.state.IsLoading {
		f.mu.Unlock()
		return closed()
	}
	if strings.TrimSpace(f.email) == "" {
		f.state.Validity = ValidityInvalid
		f.mu.Unlock()
		return closed()
	}
	code := f.state.Entered()
	f.state.IsLoading = true
	f.mu.Unlock()

	return f.launch(ctx, func(ctx context.Context) *Event {
		err := f.backend.VerifyOTP(ctx, f.email, code, f.purpose)
		if err != nil {
			f.logError("verify_otp", err)
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		if f.alive() {
			f.state.IsLoading = false
			f.state.Validity = ValidityValid
			if err != nil {
				f.state.Validity = ValidityInvalid
			}
		}

		if err != nil {
			return &Event{Kind: EventFailure, Email: f.email, Message: err.Error()}
		}
		return &Event{Kind: EventSuccess, Email: f.email}
	})
}
