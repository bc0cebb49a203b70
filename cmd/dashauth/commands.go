package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	dashAuth "github.com/MrEthical07/dashAuth"
	"github.com/MrEthical07/dashAuth/authapi"
)

type command struct {
	minArgs int
	run     func(ctx context.Context, engine *dashAuth.Engine, opts options, args []string) error
}

var commands = map[string]command{
	"signin":      {minArgs: 2, run: signIn},
	"otp-request": {minArgs: 1, run: otpRequest},
	"otp-verify":  {minArgs: 2, run: otpVerify},
	"whoami":      {run: whoAmI},
	"logout":      {run: logout},
	"gate":        {minArgs: 1, run: gate},
}

func signIn(ctx context.Context, engine *dashAuth.Engine, opts options, args []string) error {
	if err := (authapi.SignInRequest{Email: args[0], Password: args[1]}).Validate(); err != nil {
		return printIntent(dashAuth.InvalidFormOutcome(err))
	}
	_, err := engine.Login(ctx, args[0], args[1], opts.remember)
	return printIntent(dashAuth.SignInOutcome(err, args[0]))
}

func otpRequest(ctx context.Context, engine *dashAuth.Engine, _ options, args []string) error {
	if err := (authapi.RequestEmailOtpRequest{Email: args[0]}).Validate(); err != nil {
		return printIntent(dashAuth.InvalidFormOutcome(err))
	}
	resp, err := engine.RequestEmailOtp(ctx, args[0])
	if err != nil {
		return printIntent(dashAuth.Intent{Kind: dashAuth.IntentError, Message: authapi.ErrorMessage(err, "Failed to send OTP")})
	}
	return printIntent(dashAuth.EmailOTPRequestedOutcome(resp, args[0]))
}

func otpVerify(ctx context.Context, engine *dashAuth.Engine, opts options, args []string) error {
	req := dashAuth.VerifyEmailOtpRequest{Email: args[0], Code: args[1]}
	if len(args) > 2 {
		req.Name = args[2]
	}
	if err := req.ValidateOtp(opts.newUser); err != nil {
		return printIntent(dashAuth.InvalidFormOutcome(err))
	}
	if _, err := engine.VerifyEmailOtp(ctx, req); err != nil {
		return printIntent(dashAuth.Intent{Kind: dashAuth.IntentError, Message: authapi.ErrorMessage(err, "Verification failed")})
	}
	return printIntent(dashAuth.Intent{Kind: dashAuth.IntentNavigate, Location: dashAuth.PathDashboard})
}

func whoAmI(_ context.Context, engine *dashAuth.Engine, _ options, _ []string) error {
	st := engine.State()
	out := struct {
		Phase string         `json:"phase"`
		User  *dashAuth.User `json:"user,omitempty"`
	}{Phase: st.Phase.String(), User: st.User}
	return writeJSON(out)
}

func logout(ctx context.Context, engine *dashAuth.Engine, _ options, _ []string) error {
	if err := engine.Logout(ctx); err != nil {
		return err
	}
	return printIntent(dashAuth.Intent{Kind: dashAuth.IntentNavigate, Location: dashAuth.PathSignIn})
}

func gate(_ context.Context, engine *dashAuth.Engine, _ options, args []string) error {
	d := engine.Gate(args[0])
	return writeJSON(struct {
		Decision string `json:"decision"`
		Location string `json:"location,omitempty"`
	}{Decision: d.Kind.String(), Location: d.Location})
}

func printIntent(in dashAuth.Intent) error {
	kind := "navigate"
	switch in.Kind {
	case dashAuth.IntentError:
		kind = "error"
	case dashAuth.IntentNotice:
		kind = "notice"
	}
	if err := writeJSON(struct {
		Kind     string `json:"kind"`
		Location string `json:"location,omitempty"`
		Message  string `json:"message,omitempty"`
	}{Kind: kind, Location: in.Location, Message: in.Message}); err != nil {
		return err
	}
	if in.Kind == dashAuth.IntentError {
		return fmt.Errorf("%s", in.Message)
	}
	return nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
