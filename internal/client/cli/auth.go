package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mtereshin/medtrack/internal/client/api"
	"github.com/mtereshin/medtrack/internal/common"
)

// getSimpleText, getPassword and getConfirm are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getConfirm = GetConfirm

// Register runs the onboarding wizard to collect the personal details,
// then prompts for credentials and creates the account. The collected
// draft is stored first, so an aborted registration can resume with the
// answers intact; the auth service attaches and consumes it.
//
// The password byte slice is securely wiped before returning.
func (a *App) Register(ctx context.Context) error {
	draft, err := a.runOnboardingWizard(ctx)
	if err != nil {
		return err
	}
	if err := a.store.SetOnboardingData(ctx, *draft); err != nil {
		a.log.Warn(ctx, "onboarding draft save failed", "error", err)
	}

	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.auth.Register(ctx, email, password)
	if err != nil {
		fmt.Println("Registration failed:", err)
		return err
	}

	fmt.Printf("Welcome, %s!\n", user.Email)
	return nil
}

// Login prompts for credentials and authenticates. A failed attempt
// leaves the session logged out; the server's message is shown as is.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.auth.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			fmt.Println("Server unavailable, try again later.")
		} else {
			fmt.Println("Login failed:", err)
		}
		return err
	}

	fmt.Printf("Logged in as %s\n", user.Email)
	if !user.OnboardingComplete {
		fmt.Println("Your profile is incomplete; run 'onboard' to finish it.")
	}
	return nil
}

// Logout ends the session. Client state is cleared even when the server
// call fails; the subscribed notification bootstrap tears down with it.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

// Onboard completes the personal-details flow for an authenticated user
// whose onboarding is still pending. The cached flag can be stale (e.g.
// onboarding finished on another device), so the server is consulted
// before starting the wizard.
func (a *App) Onboard(ctx context.Context) error {
	if user := a.store.User(); user != nil && user.OnboardingComplete {
		fmt.Println("Onboarding already complete.")
		return nil
	}
	if complete, err := a.auth.OnboardingStatus(ctx); err == nil && complete {
		fmt.Println("Onboarding already complete.")
		return nil
	}

	draft, err := a.runOnboardingWizard(ctx)
	if err != nil {
		return err
	}
	if err := a.store.SetOnboardingData(ctx, *draft); err != nil {
		return err
	}

	if _, err := a.auth.SubmitOnboarding(ctx); err != nil {
		fmt.Println("Onboarding failed:", err)
		return err
	}
	fmt.Println("Onboarding complete!")
	return nil
}

// Profile prints the current user's profile.
func (a *App) Profile(ctx context.Context) error {
	user := a.store.User()
	if user == nil {
		return nil
	}

	fmt.Printf("Email:     %s\n", user.Email)
	fmt.Printf("Name:      %s\n", user.Name)
	fmt.Printf("Gender:    %s\n", user.Gender)
	fmt.Printf("Birthdate: %s\n", user.Birthdate)
	fmt.Printf("Phone:     %s\n", user.PhoneNumber)
	return nil
}

// EditProfile prompts for new profile values. An empty answer keeps the
// current value; only changed fields are sent.
func (a *App) EditProfile(ctx context.Context) error {
	user := a.store.User()
	if user == nil {
		return nil
	}

	update := api.ProfileUpdate{}
	changed := false

	prompt := func(label, current string, dst **string) error {
		answer, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s] (empty to keep)", label, current), os.Stdout)
		if err != nil {
			return err
		}
		if answer != "" && answer != current {
			*dst = &answer
			changed = true
		}
		return nil
	}

	if err := prompt("Name", user.Name, &update.Name); err != nil {
		return err
	}
	if err := prompt("Gender", user.Gender, &update.Gender); err != nil {
		return err
	}
	if err := prompt("Birthdate (YYYY-MM-DD)", user.Birthdate, &update.Birthdate); err != nil {
		return err
	}
	if err := prompt("Phone number", user.PhoneNumber, &update.PhoneNumber); err != nil {
		return err
	}

	if !changed {
		fmt.Println("Nothing to update.")
		return nil
	}

	if _, err := a.auth.UpdateProfile(ctx, update); err != nil {
		fmt.Println("Update failed:", err)
		return err
	}
	fmt.Println("Profile updated.")
	return nil
}

// ChangePassword prompts for the current and a new password. Both byte
// slices are wiped before returning.
func (a *App) ChangePassword(ctx context.Context) error {
	oldPassword, err := getPassword(os.Stdout, "Current password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(oldPassword)

	newPassword, err := getPassword(os.Stdout, "New password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPassword)

	if err := a.auth.ChangePassword(ctx, oldPassword, newPassword); err != nil {
		fmt.Println("Password change failed:", err)
		return err
	}
	fmt.Println("Password changed.")
	return nil
}
