package magetasks

import (
	"errors"
	"fmt"

	"github.com/magefile/mage/sh"
)

const golangciDisabled = "--disable=exhaustruct,varnamelen,ireturn,wrapcheck,nlreturn,gochecknoglobals,mnd,depguard,tagalign"

// LintAll runs every linter and joins their failures.
func LintAll() error {
	PrintH2Header("Lint")
	var errs []error
	for _, lint := range []func() error{LintFormat, LintVet, LintStaticcheck, LintGolangci} {
		if err := lint(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		PrintError("Linting failed")
		return err
	}
	PrintSuccess("All linters passed")
	return nil
}

// LintFormat lists files gofmt would change and fails if there are any.
func LintFormat() error {
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return err
	}
	if out != "" {
		return fmt.Errorf("files need formatting:\n%s", out)
	}
	return nil
}

// LintVet runs go vet.
func LintVet() error {
	return sh.RunV("go", "vet", "./...")
}

// LintStaticcheck runs staticcheck when it is installed.
func LintStaticcheck() error {
	return optional("staticcheck", "go install honnef.co/go/tools/cmd/staticcheck@latest", func() error {
		return sh.RunV("staticcheck", "./...")
	})
}

// LintGolangci runs golangci-lint when it is installed.
func LintGolangci() error {
	return optional("golangci-lint", "go install github.com/golangci/golangci-lint/cmd/golangci-lint@latest", func() error {
		return sh.RunV("golangci-lint", "run", golangciDisabled, "--timeout=5m", "./...")
	})
}

// LintGolangciFix runs golangci-lint with auto-fixes.
func LintGolangciFix() error {
	return optional("golangci-lint", "go install github.com/golangci/golangci-lint/cmd/golangci-lint@latest", func() error {
		return sh.RunV("golangci-lint", "run", "--fix", golangciDisabled, "--timeout=5m", "./...")
	})
}
