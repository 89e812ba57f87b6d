package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/aussiebroadwan/passage/internal/client/domain"
	"github.com/aussiebroadwan/passage/internal/client/flow"
	"github.com/aussiebroadwan/passage/internal/client/store"
	"github.com/aussiebroadwan/passage/pkg/slogx"
)

// errQuit ends the shell without an error.
var errQuit = errors.New("quit")

// Mailbox reveals the latest code mailed to email for purpose. Only the
// in-process emulator can offer one.
type Mailbox func(email string, purpose domain.OTPPurpose) (string, bool)

// route is a navigation target with the arguments the OTP screen needs.
type route struct {
	screen  domain.Screen
	email   string
	purpose domain.OTPPurpose
}

// Shell is the terminal navigator. It renders one flow at a time as a series
// of prompts and moves between screens on the events the flows emit.
type Shell struct {
	Backend     domain.Backend
	Flags       store.Flags
	Credentials domain.CredentialProvider
	Mailbox     Mailbox
	Logger      *slog.Logger

	in  *bufio.Scanner
	out io.Writer
	mu  sync.Mutex // serialises writes to out
}

func NewShell(backend domain.Backend, flags store.Flags, credentials domain.CredentialProvider, in io.Reader, out io.Writer, logger *slog.Logger) *Shell {
	return &Shell{
		Backend:     backend,
		Flags:       flags,
		Credentials: credentials,
		Logger:      slogx.OrDefault(logger).With("component", "shell"),
		in:          bufio.NewScanner(in),
		out:         out,
	}
}

// Run shows start and follows flow events until the input ends, the user
// types :quit or ctx is cancelled.
func (s *Shell) Run(ctx context.Context, start domain.Screen) error {
	r := route{screen: start}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.Logger.Debug("showing screen", "screen", r.screen)

		next, err := s.show(ctx, r)
		switch {
		case errors.Is(err, errQuit), errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}
		r = next
	}
}

// Notify prints an out-of-band line such as a session status change.
func (s *Shell) Notify(msg string) {
	s.printf("\n[session] %s\n", msg)
}

func (s *Shell) show(ctx context.Context, r route) (route, error) {
	switch r.screen {
	case domain.ScreenLogin:
		return s.login(ctx)
	case domain.ScreenSignUp:
		return s.signUp(ctx)
	case domain.ScreenResetPassword:
		return s.resetPassword(ctx)
	case domain.ScreenOTPVerify:
		return s.verifyOTP(ctx, r.email, r.purpose)
	case domain.ScreenSetNewPassword:
		return s.setNewPassword(ctx)
	case domain.ScreenHome:
		return s.home(ctx)
	default:
		return route{}, fmt.Errorf("unknown screen %q", r.screen)
	}
}

func (s *Shell) login(ctx context.Context) (route, error) {
	f := flow.NewLogin(s.Backend, s.Credentials, s.Logger)
	defer f.Close()

	s.printf("\n== Sign in ==\ncommands: :signup :reset :google :quit\n")

	email, err := s.prompt("Email")
	if err != nil {
		return route{}, err
	}
	switch email {
	case ":signup":
		return route{screen: domain.ScreenSignUp}, nil
	case ":reset":
		return route{screen: domain.ScreenResetPassword}, nil
	case ":google":
		return s.google(ctx, f)
	}
	f.SetEmail(strings.TrimSpace(email))

	password, err := s.prompt("Password")
	if err != nil {
		return route{}, err
	}
	f.SetPassword(password)

	ev, ok := await(ctx, f.Submit(ctx))
	st := f.State()
	if !ok {
		s.fieldErrors(st.EmailError, st.PasswordError)
		return route{screen: domain.ScreenLogin}, nil
	}

	switch ev.Kind {
	case flow.EventSuccess:
		return route{screen: domain.ScreenHome}, nil
	case flow.EventEmailNotVerified:
		s.printf("Your email is not verified. We sent a new code to %s.\n", ev.Email)
		return route{screen: domain.ScreenOTPVerify, email: ev.Email, purpose: domain.PurposeLogin}, nil
	default:
		s.printf("%s\n", ev.Message)
		return route{screen: domain.ScreenLogin}, nil
	}
}

func (s *Shell) google(ctx context.Context, f *flow.Login) (route, error) {
	ev, ok := await(ctx, f.SignInWithGoogle(ctx))
	if !ok {
		s.printf("Google sign-in cancelled.\n")
		return route{screen: domain.ScreenLogin}, nil
	}
	if ev.Kind != flow.EventSuccess {
		s.printf("%s\n", ev.Message)
		return route{screen: domain.ScreenLogin}, nil
	}
	return route{screen: domain.ScreenHome}, nil
}

func (s *Shell) signUp(ctx context.Context) (route, error) {
	f := flow.NewSignUp(s.Backend, s.Logger)
	defer f.Close()

	s.printf("\n== Create account ==\ncommands: :login :quit\n")

	name, err := s.prompt("Full name")
	if err != nil {
		return route{}, err
	}
	if name == ":login" {
		return route{screen: domain.ScreenLogin}, nil
	}
	f.SetName(name)

	email, err := s.prompt("Email")
	if err != nil {
		return route{}, err
	}
	f.SetEmail(strings.TrimSpace(email))

	password, err := s.prompt("Password")
	if err != nil {
		return route{}, err
	}
	f.SetPassword(password)

	terms, err := s.prompt("Accept the terms of service? [y/N]")
	if err != nil {
		return route{}, err
	}
	f.SetAcceptedTerms(strings.EqualFold(terms, "y") || strings.EqualFold(terms, "yes"))

	ev, ok := await(ctx, f.Submit(ctx))
	if !ok {
		st := f.State()
		s.fieldErrors(st.NameError, st.EmailError, st.PasswordError, st.TermsError)
		return route{screen: domain.ScreenSignUp}, nil
	}

	s.printf("We sent a verification code to %s.\n", ev.Email)
	return route{screen: domain.ScreenOTPVerify, email: ev.Email, purpose: domain.PurposeSignUp}, nil
}

func (s *Shell) resetPassword(ctx context.Context) (route, error) {
	f := flow.NewResetPassword(s.Backend, s.Logger)
	defer f.Close()

	s.printf("\n== Reset password ==\ncommands: :login :quit\n")

	email, err := s.prompt("Email")
	if err != nil {
		return route{}, err
	}
	if email == ":login" {
		return route{screen: domain.ScreenLogin}, nil
	}
	f.SetEmail(strings.TrimSpace(email))

	ev, ok := await(ctx, f.Submit(ctx))
	if !ok {
		s.fieldErrors(f.State().EmailError)
		return route{screen: domain.ScreenResetPassword}, nil
	}

	s.printf("We sent a recovery code to %s.\n", ev.Email)
	return route{screen: domain.ScreenOTPVerify, email: ev.Email, purpose: domain.PurposeReset}, nil
}

func (s *Shell) verifyOTP(ctx context.Context, email string, purpose domain.OTPPurpose) (route, error) {
	if email == "" || !purpose.Valid() {
		s.Logger.Warn("verification route without a valid target", "purpose", purpose)
		return route{screen: domain.ScreenLogin}, nil
	}

	f := flow.NewOTP(s.Backend, s.Flags, email, purpose, s.Logger)
	defer f.Close()

	if err := f.EnterScreen(ctx); err != nil {
		s.Logger.Error("failed to record pending reset", "error", err)
	}

	s.printf("\n== Verify %s ==\ncommands: :login :quit\n", email)
	if s.Mailbox != nil {
		if code, ok := s.Mailbox(email, purpose); ok {
			s.printf("(emulator outbox) latest code: %s\n", code)
		}
	}

	code, err := s.prompt(fmt.Sprintf("%d-digit code", flow.OTPLength))
	if err != nil {
		return route{}, err
	}
	if code == ":login" {
		return route{screen: domain.ScreenLogin}, nil
	}

	slot := 0
	for _, c := range code {
		if slot == flow.OTPLength {
			break
		}
		if c >= '0' && c <= '9' {
			f.EnterDigit(int(c-'0'), slot)
			slot++
		}
	}

	ev, ok := await(ctx, f.Verify(ctx))
	if !ok || ev.Kind != flow.EventSuccess {
		s.printf("That code is not valid.\n")
		if ok && ev.Message != "" {
			s.printf("%s\n", ev.Message)
		}
		return route{screen: domain.ScreenOTPVerify, email: email, purpose: purpose}, nil
	}

	return route{screen: f.Destination()}, nil
}

func (s *Shell) setNewPassword(ctx context.Context) (route, error) {
	f := flow.NewSetPassword(s.Backend, s.Flags, s.Logger)
	defer f.Close()

	s.printf("\n== Choose a new password ==\n")

	password, err := s.prompt("New password")
	if err != nil {
		return route{}, err
	}
	f.SetPassword(password)

	confirm, err := s.prompt("Confirm password")
	if err != nil {
		return route{}, err
	}
	f.SetConfirmPassword(confirm)

	if _, ok := await(ctx, f.Submit(ctx)); !ok {
		st := f.State()
		s.fieldErrors(st.PasswordError, st.ConfirmPasswordError)
		return route{screen: domain.ScreenSetNewPassword}, nil
	}

	s.printf("Password updated. Please sign in again.\n")
	return route{screen: domain.ScreenLogin}, nil
}

func (s *Shell) home(ctx context.Context) (route, error) {
	f := flow.NewHome(s.Backend, s.Logger)
	defer f.Close()

	for {
		st := f.Load(ctx)
		s.printf("\n== Welcome, %s ==\naccess token:  %s\nrefresh token: %s\n",
			st.UserName, abbreviate(st.AccessToken), abbreviate(st.RefreshToken))
		if st.ErrorMessage != "" {
			s.printf("%s\n", st.ErrorMessage)
		}

		cmd, err := s.prompt("Command (:signout, :reload, :quit)")
		if err != nil {
			return route{}, err
		}
		if cmd != ":signout" {
			continue
		}

		if _, ok := await(ctx, f.SignOut(ctx)); ok {
			return route{screen: domain.ScreenLogin}, nil
		}
		s.printf("%s\n", f.State().ErrorMessage)
	}
}

// prompt reads one line as typed, minus the line ending. A line that is a
// :command once trimmed is returned trimmed. :quit yields errQuit and the end
// of input yields io.EOF.
func (s *Shell) prompt(label string) (string, error) {
	s.printf("%s: ", label)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}

	line := strings.TrimRight(s.in.Text(), "\r\n")
	cmd := strings.TrimSpace(line)
	if cmd == ":quit" {
		return "", errQuit
	}
	if strings.HasPrefix(cmd, ":") {
		return cmd, nil
	}
	return line, nil
}

func (s *Shell) fieldErrors(msgs ...string) {
	for _, msg := range msgs {
		if msg != "" {
			s.printf("  ! %s\n", msg)
		}
	}
}

func (s *Shell) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.out, format, args...)
}

// await waits for the flow's one-shot event. ok is false when the flow
// finished without one.
func await(ctx context.Context, events <-chan flow.Event) (flow.Event, bool) {
	select {
	case ev, ok := <-events:
		return ev, ok
	case <-ctx.Done():
		return flow.Event{}, false
	}
}

func abbreviate(token string) string {
	const keep = 24
	if len(token) <= keep {
		return token
	}
	return token[:keep] + "..."
}
