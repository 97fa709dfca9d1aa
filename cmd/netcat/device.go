package main

import (
	"fmt"
	"net"
	"os"
	"regexp"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"

	"github.com/sebmaj/netcat-go/internal/inventory"
	"github.com/sebmaj/netcat-go/internal/session"
	"github.com/sebmaj/netcat-go/internal/vendor"
	"github.com/sebmaj/netcat-go/internal/vendor/cisco"
	"github.com/sebmaj/netcat-go/internal/vendor/f5"
	"github.com/sebmaj/netcat-go/internal/vendor/paloalto"
)

// sshPort is the fixed port every device family listens for CLI sessions
// on; device_name doubles as the SSH hostname, matching pexpect.spawn's
// "ssh -l {username} {device_name}" command line.
const sshPort = "22"

// agentSigner dials the local ssh-agent and returns its first identity,
// standing in for the original's "ssh -o PubkeyAuthentication=yes" path
// which relies on the operator's running agent rather than an explicit
// key file.
func agentSigner() (ssh.Signer, error) {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, fmt.Errorf("SSH_AUTH_SOCK is not set; RSA auth requires a running ssh-agent")
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, fmt.Errorf("dialing ssh-agent: %w", err)
	}
	ag := agent.NewClient(conn)
	signers, err := ag.Signers()
	if err != nil {
		return nil, fmt.Errorf("listing ssh-agent identities: %w", err)
	}
	if len(signers) == 0 {
		return nil, fmt.Errorf("ssh-agent has no loaded identities")
	}
	return signers[0], nil
}

// adapterFor builds the Vendor Adapter for device, dispatching on its
// DeviceType the way get_device_data's startswith("paloalto")/
// startswith("cisco")/startswith("f5") chain does.
func adapterFor(device inventory.Device) (vendor.Adapter, error) {
	switch device.DeviceType {
	case inventory.DeviceTypePaloAlto:
		return paloalto.New(device.DeviceName, device.Username), nil
	case inventory.DeviceTypeF5:
		return f5.New(device.DeviceName, device.Username), nil
	case inventory.DeviceTypeCiscoNexus:
		return cisco.New(device.DeviceName, cisco.KindNexus)
	case inventory.DeviceTypeCiscoRouter:
		return cisco.New(device.DeviceName, cisco.KindRouter)
	case inventory.DeviceTypeCiscoSwitch:
		return cisco.New(device.DeviceName, cisco.KindSwitch)
	case inventory.DeviceTypeCiscoASA:
		return cisco.New(device.DeviceName, cisco.KindASA)
	case inventory.DeviceTypeCiscoASAMC:
		return cisco.New(device.DeviceName, cisco.KindASAMC)
	default:
		return nil, fmt.Errorf("unsupported device type %q", device.DeviceType)
	}
}

// adapterPrompt extracts the adapter's expected prompt regexp, needed by
// session.Open before the session exists for the adapter to harden. The
// vendor.Adapter capability interface intentionally doesn't expose
// PromptRegexp (only the dialer needs it), so this switches on the three
// concrete adapter types instead.
func adapterPrompt(device inventory.Device, a vendor.Adapter) (*regexp.Regexp, error) {
	switch v := a.(type) {
	case *paloalto.Adapter:
		return v.PromptRegexp, nil
	case *f5.Adapter:
		return v.PromptRegexp, nil
	case *cisco.Adapter:
		return v.PromptRegexp, nil
	default:
		return nil, fmt.Errorf("device %s: adapter %T exposes no prompt regexp", device.DeviceName, a)
	}
}

// openDeviceSession opens a hardened CLI session to device, building the
// matching Vendor Adapter first so its prompt regexp can be handed to
// session.Open.
func openDeviceSession(device inventory.Device) (*session.Session, vendor.Adapter, error) {
	adapter, err := adapterFor(device)
	if err != nil {
		return nil, nil, err
	}

	prompt, err := adapterPrompt(device, adapter)
	if err != nil {
		return nil, nil, err
	}

	addr := net.JoinHostPort(device.DeviceName, sshPort)

	var signer ssh.Signer
	pubkeyAuth := device.Auth == inventory.AuthRSA
	if pubkeyAuth {
		signer, err = agentSigner()
		if err != nil {
			return nil, nil, fmt.Errorf("loading RSA identity for %s: %w", device.DeviceName, err)
		}
	}

	sess, err := session.Open(device.DeviceName, addr, device.Username, device.Password, pubkeyAuth, signer, prompt)
	if err != nil {
		return nil, nil, err
	}

	if err := adapter.Harden(sess); err != nil {
		sess.Close()
		return nil, nil, err
	}

	return sess, adapter, nil
}
