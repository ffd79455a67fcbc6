package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/verinova/onboarding/internal/onboarding"
	"github.com/verinova/onboarding/internal/profile"
	"github.com/verinova/onboarding/internal/session"
)

func runStatus(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	printProfile(a.session)
	return nil
}

func runSignup(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	mobile := fs.String("mobile", "", "mobile number")
	name := fs.String("name", "", "full name")
	dob := fs.String("dob", "", "date of birth (YYYY-MM-DD)")
	address := fs.String("address", "", "postal address")
	aadhar := fs.String("aadhar", "", "path to the Aadhar card (pdf, jpg or png)")
	pan := fs.String("pan", "", "path to the PAN card (pdf, jpg or png)")
	selfie := fs.String("selfie", "", "path to a selfie (jpg or png)")
	mpin := fs.String("mpin", "", "4 digit MPIN")
	fingerprint := fs.Bool("fingerprint", false, "enable fingerprint unlock")
	if err := fs.Parse(args); err != nil {
		return err
	}

	flow := onboarding.NewFlow(a.session, a.client, a.logger)
	if err := flow.SetMobile(*mobile); err != nil {
		return err
	}
	if err := flow.SetPersonalDetails(*name, *dob, *address); err != nil {
		return err
	}

	docs, closeDocs, err := openDocuments(*aadhar, *pan, *selfie)
	if err != nil {
		return err
	}
	defer closeDocs()
	if err := flow.UploadDocuments(ctx, docs); err != nil {
		return err
	}

	if err := flow.SetMPIN(*mpin, *mpin); err != nil {
		return err
	}
	flow.SetFingerprint(*fingerprint)
	if err := flow.Complete(ctx); err != nil {
		return err
	}
	fmt.Printf("Account created for %s. Log in with your MPIN to continue.\n", a.session.Profile().FirstName())
	return nil
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	mobile := fs.String("mobile", "", "mobile number")
	mpin := fs.String("mpin", "", "4 digit MPIN")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.session.Login(ctx, *mobile, *mpin); err != nil {
		return err
	}
	fmt.Printf("Welcome, %s\n", a.session.Profile().FirstName())
	return nil
}

func runUnlock(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("unlock", flag.ContinueOnError)
	mpin := fs.String("mpin", "", "4 digit MPIN")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.session.Unlock(ctx, *mpin); err != nil {
		return err
	}
	fmt.Printf("Welcome back, %s\n", a.session.Profile().FirstName())
	return nil
}

func runUpdate(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	var patch profile.Patch
	fs.Func("name", "full name", func(v string) error { patch.Name = profile.String(v); return nil })
	fs.Func("dob", "date of birth", func(v string) error { patch.DOB = profile.String(v); return nil })
	fs.Func("address", "postal address", func(v string) error { patch.Address = profile.String(v); return nil })
	fs.BoolFunc("fingerprint", "enable fingerprint unlock", func(v string) error {
		enabled := v == "true"
		patch.Fingerprint = &enabled
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return err
	}
	if patch.IsEmpty() {
		return errors.New("nothing to update")
	}
	a.session.UpdateProfile(patch)
	printProfile(a.session)
	return nil
}

func runLogout(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	a.session.Logout(ctx)
	fmt.Println("Logged out")
	return nil
}

func printProfile(s *session.Store) {
	p := s.Profile()
	mpin := ""
	if p.MPIN != "" {
		mpin = strings.Repeat("*", len(p.MPIN))
	}
	fmt.Printf("screen:      %s\n", s.Landing())
	fmt.Printf("mobile:      %s\n", p.Mobile)
	fmt.Printf("name:        %s\n", p.Name)
	fmt.Printf("dob:         %s\n", p.DOB)
	fmt.Printf("address:     %s\n", p.Address)
	fmt.Printf("aadhar:      %s\n", p.AadharURL)
	fmt.Printf("pan:         %s\n", p.PANURL)
	fmt.Printf("selfie:      %s\n", p.SelfieURL)
	fmt.Printf("mpin:        %s\n", mpin)
	fmt.Printf("fingerprint: %t\n", p.Fingerprint)
}

func openDocuments(aadhar, pan, selfie string) (onboarding.Documents, func(), error) {
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	open := func(path string) (onboarding.Document, error) {
		if path == "" {
			return onboarding.Document{}, nil
		}
		f, err := os.Open(path)
		if err != nil {
			return onboarding.Document{}, err
		}
		files = append(files, f)
		return onboarding.Document{Name: filepath.Base(path), Body: f}, nil
	}

	var docs onboarding.Documents
	var err error
	if docs.Aadhar, err = open(aadhar); err != nil {
		closeAll()
		return docs, func() {}, err
	}
	if docs.PAN, err = open(pan); err != nil {
		closeAll()
		return docs, func() {}, err
	}
	if docs.Selfie, err = open(selfie); err != nil {
		closeAll()
		return docs, func() {}, err
	}
	return docs, closeAll, nil
}

