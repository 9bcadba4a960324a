package cli

import (
	"os/exec"

	"github.com/pkg/errors"
)

type Driver struct {
	binPath string
	locator string
}

func NewDriver(binPath, locator string) *Driver {
	return &Driver{binPath, locator}
}

func (d *Driver) Locator() string {
	return d.locator
}

func (d *Driver) List() (string, error) {
	out, err := exec.Command(d.binPath, "ls", d.Locator()).Output()
	if err != nil {
		return "", errors.Wrap(err, "ERROR: could not run subzip ls")
	}

	return string(out), nil
}

func (d *Driver) Verify() (string, error) {
	out, err := exec.Command(d.binPath, "verify", d.Locator()).Output()
	if err != nil {
		return "", errors.Wrap(err, "ERROR: could not run subzip verify")
	}

	return string(out), nil
}
