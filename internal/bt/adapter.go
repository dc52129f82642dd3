package bt

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/lowaak/running-coach/internal/go_func_utils"
)

var (
	// Immediate Alert service and its Alert Level characteristic
	ServiceUUIDImmediateAlert = bluetooth.New16BitUUID(0x1802)
	CharUUIDAlertLevel        = bluetooth.New16BitUUID(0x2A06)
)

var ErrDeviceNotFound = errors.New("device not found")

// Peripheral is a device seen while scanning
type Peripheral struct {
	Address string
	Name    string
	RSSI    int16
}

// AdapterConnector connects to one wearable through a host BLE adapter
type AdapterConnector struct {
	adapter     *bluetooth.Adapter
	address     string
	scanTimeout time.Duration
	logger      *log.Logger

	enableOnce sync.Once
	enableErr  error
}

func NewAdapterConnector(adapter *bluetooth.Adapter, address string, scanTimeout time.Duration, logger *log.Logger) *AdapterConnector {
	if adapter == nil {
		panic("AdapterConnector: adapter cannot be nil")
	}
	if logger == nil {
		panic("AdapterConnector: logger cannot be nil")
	}
	if scanTimeout <= 0 {
		panic("AdapterConnector: scanTimeout must be > 0")
	}
	return &AdapterConnector{
		adapter:     adapter,
		address:     address,
		scanTimeout: scanTimeout,
		logger:      logger,
	}
}

func (c *AdapterConnector) enable() error {
	c.enableOnce.Do(func() {
		c.enableErr = c.adapter.Enable()
	})
	return c.enableErr
}

// Connect scans for the configured address, connects and resolves the Alert Level characteristic
func (c *AdapterConnector) Connect(ctx context.Context) (AlertWriter, error) {
	if err := c.enable(); err != nil {
		return nil, fmt.Errorf("enabling adapter: %w", err)
	}

	var target *bluetooth.ScanResult
	err := scan(ctx, c.logger, c.adapter, c.scanTimeout, func(result bluetooth.ScanResult) bool {
		if !strings.EqualFold(result.Address.String(), c.address) {
			return false
		}
		target = &result
		return true
	})
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("%s within %v: %w", c.address, c.scanTimeout, ErrDeviceNotFound)
	}

	c.logger.Printf("AdapterConnector: connecting to %s (%s)", c.address, target.LocalName())
	device, err := c.adapter.Connect(target.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", c.address, err)
	}

	char, err := alertLevelCharacteristic(device)
	if err != nil {
		_ = device.Disconnect()
		return nil, err
	}
	return &characteristicWriter{device: device, char: char}, nil
}

func alertLevelCharacteristic(device bluetooth.Device) (bluetooth.DeviceCharacteristic, error) {
	services, err := device.DiscoverServices([]bluetooth.UUID{ServiceUUIDImmediateAlert})
	if err != nil {
		return bluetooth.DeviceCharacteristic{}, fmt.Errorf("discovering immediate alert service: %w", err)
	}
	if len(services) == 0 {
		return bluetooth.DeviceCharacteristic{}, fmt.Errorf("immediate alert service: %w", ErrDeviceNotFound)
	}

	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{CharUUIDAlertLevel})
	if err != nil {
		return bluetooth.DeviceCharacteristic{}, fmt.Errorf("discovering alert level characteristic: %w", err)
	}
	if len(chars) == 0 {
		return bluetooth.DeviceCharacteristic{}, fmt.Errorf("alert level characteristic: %w", ErrDeviceNotFound)
	}
	return chars[0], nil
}

type characteristicWriter struct {
	device bluetooth.Device
	char   bluetooth.DeviceCharacteristic
}

func (w *characteristicWriter) WriteLevel(level AlertLevel) error {
	_, err := w.char.WriteWithoutResponse([]byte{byte(level)})
	return err
}

func (w *characteristicWriter) Close() error {
	return w.device.Disconnect()
}

// Discover lists nearby devices advertising the Immediate Alert service, strongest first
func Discover(ctx context.Context, logger *log.Logger, adapter *bluetooth.Adapter, timeout time.Duration) ([]Peripheral, error) {
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("enabling adapter: %w", err)
	}

	seen := make(map[string]Peripheral)
	err := scan(ctx, logger, adapter, timeout, func(result bluetooth.ScanResult) bool {
		if !result.HasServiceUUID(ServiceUUIDImmediateAlert) {
			return false
		}
		name := result.LocalName()
		if name == "" {
			name = "Unknown"
		}
		seen[result.Address.String()] = Peripheral{
			Address: result.Address.String(),
			Name:    name,
			RSSI:    result.RSSI,
		}
		return false
	})
	if err != nil {
		return nil, err
	}

	peripherals := make([]Peripheral, 0, len(seen))
	for _, p := range seen {
		peripherals = append(peripherals, p)
	}
	sortPeripherals(peripherals)
	return peripherals, nil
}

func sortPeripherals(peripherals []Peripheral) {
	sort.Slice(peripherals, func(i, j int) bool {
		if peripherals[i].RSSI != peripherals[j].RSSI {
			return peripherals[i].RSSI > peripherals[j].RSSI
		}
		return peripherals[i].Address < peripherals[j].Address
	})
}

// scan runs until found returns true, the timeout passes or ctx ends.
// found is called from the adapter's scan callback, one result at a time.
func scan(ctx context.Context, logger *log.Logger, adapter *bluetooth.Adapter, timeout time.Duration, found func(bluetooth.ScanResult) bool) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stopOnce sync.Once
	stop := func() {
		stopOnce.Do(func() { _ = adapter.StopScan() })
	}

	scanDone := make(chan struct{})
	stopOnDone(ctx, logger, scanDone, stop)

	err := adapter.Scan(func(a *bluetooth.Adapter, result bluetooth.ScanResult) {
		if found(result) {
			stop()
		}
	})
	close(scanDone)

	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}
	if ctx.Err() != nil && !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ctx.Err()
	}
	return nil
}

// stopOnDone calls stop once ctx ends, unless finished is closed first
func stopOnDone(ctx context.Context, logger *log.Logger, finished <-chan struct{}, stop func()) {
	go_func_utils.SafeGo(logger, "scan timeout", func() {
		select {
		case <-ctx.Done():
			stop()
		case <-finished:
		}
	})
}
