package toolchain

import "fmt"

// InstallError reports a component that could not be provisioned after the
// retry budget was spent.
type InstallError struct {
	Component string
	Err       error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("install %s: %v", e.Component, e.Err)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}

// LicenseGateError reports that SDK licenses have not been accepted and the
// caller did not authorize acceptance. Provisioning never proceeds past the
// gate.
type LicenseGateError struct {
	Reason string
}

func (e *LicenseGateError) Error() string {
	return "sdk licenses not accepted: " + e.Reason
}
