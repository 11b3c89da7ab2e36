package reconcile

import (
	"github.com/ksyq12/devhost/internal/errors"
	"github.com/ksyq12/devhost/internal/ssl"
	"github.com/ksyq12/devhost/internal/vhostconf"
)

// Status is the outcome tag of one operation.
type Status string

const (
	StatusSuccess          Status = "success"
	StatusWarning          Status = "warning"
	StatusAlreadyExists    Status = "already_exists"
	StatusNotFound         Status = "not_found"
	StatusValidationError  Status = "validation_error"
	StatusPermissionError  Status = "permission_error"
	StatusCertificateError Status = "certificate_error"
	StatusMalformedConfig  Status = "malformed_config"
	StatusIOError          Status = "io_error"
	StatusInternalError    Status = "internal_error"
)

// StatusFor classifies a failed operation's error.
func StatusFor(err error) Status {
	switch errors.CodeOf(err) {
	case errors.ErrCodeValidation:
		return StatusValidationError
	case errors.ErrCodeAlreadyExists:
		return StatusAlreadyExists
	case errors.ErrCodePermission:
		return StatusPermissionError
	case errors.ErrCodeCertificate:
		return StatusCertificateError
	case errors.ErrCodeMalformedConfig:
		return StatusMalformedConfig
	case errors.ErrCodeNotFound:
		return StatusNotFound
	case errors.ErrCodeIO:
		return StatusIOError
	default:
		return StatusInternalError
	}
}

// ExitCode maps the status to a process exit status.
func (s Status) ExitCode() int {
	switch s {
	case StatusSuccess, StatusWarning, StatusNotFound:
		return 0
	case StatusValidationError:
		return 2
	case StatusAlreadyExists:
		return 3
	case StatusPermissionError:
		return 5
	case StatusCertificateError:
		return 6
	case StatusIOError:
		return 7
	case StatusMalformedConfig:
		return 8
	default:
		return 1
	}
}

// State is the last step an operation reached.
type State string

const (
	StatePending         State = "PENDING"
	StateValidated       State = "VALIDATED"
	StateCertProvisioned State = "CERT_PROVISIONED"
	StateVHostMutated    State = "VHOST_MUTATED"
	StateHostsMutated    State = "HOSTS_MUTATED"
	StateCleanedUp       State = "CLEANED_UP"
)

// Result reports one AddRoute or RemoveRoute call.
type Result struct {
	OperationID string   `json:"operation_id"`
	Action      string   `json:"action"`
	Hostname    string   `json:"hostname"`
	Status      Status   `json:"status"`
	State       State    `json:"state"`
	Warnings    []string `json:"warnings,omitempty"`
	Error       string   `json:"error,omitempty"`
	Err         error    `json:"-"`

	Block        *vhostconf.Block   `json:"block,omitempty"`
	Removed      []*vhostconf.Block `json:"removed,omitempty"`
	Cert         *ssl.CertPair      `json:"cert,omitempty"`
	RootCreated  string             `json:"root_created,omitempty"`
	HostsAdded   []string           `json:"hosts_added,omitempty"`
	HostsRemoved int                `json:"hosts_removed"`
	// Retained lists the files whose backups were kept.
	Retained []string `json:"backups_retained,omitempty"`
}

// OK reports whether the operation did not fail.
func (r *Result) OK() bool {
	return r.Err == nil
}

// ExitCode is the process exit status for the result. An operation that
// failed because a file it needs is missing exits 4, unlike a remove that
// simply found no route.
func (r *Result) ExitCode() int {
	if r.Err != nil && r.Status == StatusNotFound {
		return errors.ExitCode(r.Err)
	}
	return r.Status.ExitCode()
}

func (r *Result) fail(err error) *Result {
	r.Err = err
	r.Error = err.Error()
	r.Status = StatusFor(err)
	return r
}

func (r *Result) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
