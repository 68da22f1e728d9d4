// Package ddc talks DDC/CI to monitors over the Linux i2c-dev interface.
package ddc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

const (
	edidAddr = 0x50
	ddcAddr  = 0x37

	// ioctl request selecting the slave address for subsequent read/write.
	i2cSlave = 0x0703

	hostAddr    = 0x51
	displayAddr = 0x6E
	replyXor    = 0x50

	opGetVCP      = 0x01
	opGetVCPReply = 0x02
	opSetVCP      = 0x03

	VCPBrightness = 0x10
	VCPVersion    = 0xDF
)

var (
	ErrNoEnumerator = errors.New("ddc: no i2c-dev enumerator")
	ErrChecksum     = errors.New("ddc: reply checksum mismatch")
	ErrUnsupported  = errors.New("ddc: VCP feature not supported")
	ErrBadReply     = errors.New("ddc: malformed reply")
)

var (
	SysfsRoot = "/sys/class/i2c-dev"
	DevRoot   = "/dev"

	// Monitors need time to prepare a reply and to apply a write.
	ReplyDelay = 40 * time.Millisecond
	WriteDelay = 50 * time.Millisecond
)

// Device is one i2c bus that may carry a DDC/CI capable monitor. The file
// descriptor is opened on first use and owned exclusively by the Device.
type Device struct {
	Path string
	name string
	fd   int
}

// Enumerate lists every i2c-dev bus. Nothing is opened.
func Enumerate() ([]*Device, error) {
	entries, err := os.ReadDir(SysfsRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoEnumerator, err)
	}

	var devices []*Device
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "i2c-") {
			continue
		}
		name, err := os.ReadFile(filepath.Join(SysfsRoot, e.Name(), "name"))
		if err != nil {
			continue
		}
		devices = append(devices, &Device{
			Path: filepath.Join(DevRoot, e.Name()),
			name: strings.TrimSpace(string(name)),
			fd:   -1,
		})
	}

	sort.Slice(devices, func(i, j int) bool {
		return busNumber(devices[i].Path) < busNumber(devices[j].Path)
	})
	return devices, nil
}

func busNumber(path string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(path), "i2c-"))
	if err != nil {
		return -1
	}
	return n
}

// BusName is the adapter name reported by the kernel, e.g. "SMBus I801
// adapter" or "AMDGPU DM i2c hw bus 1".
func (d *Device) BusName() string { return d.name }

func (d *Device) String() string { return d.Path + " (" + d.name + ")" }

func (d *Device) open() (int, error) {
	if d.fd >= 0 {
		return d.fd, nil
	}
	fd, err := unix.Open(d.Path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("open %s: %w", d.Path, err)
	}
	d.fd = fd
	return fd, nil
}

func (d *Device) Close() error {
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}

func (d *Device) transfer(addr int, out []byte, in []byte, delay time.Duration) error {
	fd, err := d.open()
	if err != nil {
		return err
	}
	if err := unix.IoctlSetInt(fd, i2cSlave, addr); err != nil {
		return fmt.Errorf("%s: select address %#x: %w", d.Path, addr, err)
	}
	if len(out) > 0 {
		if _, err := unix.Write(fd, out); err != nil {
			return fmt.Errorf("%s: write: %w", d.Path, err)
		}
	}
	if len(in) == 0 {
		return nil
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	n, err := unix.Read(fd, in)
	if err != nil {
		return fmt.Errorf("%s: read: %w", d.Path, err)
	}
	if n != len(in) {
		return fmt.Errorf("%s: short read %d/%d: %w", d.Path, n, len(in), ErrBadReply)
	}
	return nil
}

// ReadEDID reads the 128-byte base EDID block from address 0x50.
func (d *Device) ReadEDID() ([]byte, error) {
	buf := make([]byte, 128)
	if err := d.transfer(edidAddr, []byte{0}, buf, 0); err != nil {
		return nil, err
	}
	return buf, nil
}

// GetVCP returns the current and maximum value of a VCP feature.
func (d *Device) GetVCP(code byte) (current, maximum uint16, err error) {
	reply := make([]byte, 11)
	if err := d.transfer(ddcAddr, encodeGet(code), reply, ReplyDelay); err != nil {
		return 0, 0, err
	}
	return decodeReply(code, reply)
}

func (d *Device) SetVCP(code byte, value uint16) error {
	if err := d.transfer(ddcAddr, encodeSet(code, value), nil, 0); err != nil {
		return err
	}
	time.Sleep(WriteDelay)
	return nil
}

func (d *Device) GetBrightness() (current, maximum uint16, err error) {
	return d.GetVCP(VCPBrightness)
}

func (d *Device) SetBrightness(value uint16) error {
	return d.SetVCP(VCPBrightness, value)
}

// MCCSVersion reads the MCCS version implemented by the monitor, e.g. "2.2".
func (d *Device) MCCSVersion() (string, error) {
	current, _, err := d.GetVCP(VCPVersion)
	if err != nil {
		return "", err
	}
	return formatVersion(current), nil
}

// formatVersion splits a VCP 0xDF value into major (high byte) and minor.
func formatVersion(v uint16) string {
	return fmt.Sprintf("%d.%d", v>>8, v&0xFF)
}

func checksum(seed byte, b []byte) byte {
	for _, v := range b {
		seed ^= v
	}
	return seed
}

func encodeGet(code byte) []byte {
	msg := []byte{hostAddr, 0x80 | 2, opGetVCP, code}
	return append(msg, checksum(displayAddr, msg))
}

func encodeSet(code byte, value uint16) []byte {
	msg := []byte{hostAddr, 0x80 | 4, opSetVCP, code, byte(value >> 8), byte(value)}
	return append(msg, checksum(displayAddr, msg))
}

// decodeReply validates a VCP feature reply:
// src, len, 0x02, result, code, type, max hi, max lo, cur hi, cur lo, checksum.
func decodeReply(code byte, r []byte) (current, maximum uint16, err error) {
	if len(r) < 11 {
		return 0, 0, ErrBadReply
	}
	if checksum(replyXor, r[:10]) != r[10] {
		return 0, 0, ErrChecksum
	}
	if r[1]&0x7F != 8 || r[2] != opGetVCPReply || r[4] != code {
		return 0, 0, ErrBadReply
	}
	if r[3] != 0 {
		return 0, 0, fmt.Errorf("%w: %#02x", ErrUnsupported, code)
	}
	maximum = uint16(r[6])<<8 | uint16(r[7])
	current = uint16(r[8])<<8 | uint16(r[9])
	return current, maximum, nil
}
