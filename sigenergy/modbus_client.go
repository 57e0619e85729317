package sigenergy

import (
	"fmt"
	"time"

	"github.com/goburrow/modbus"
)

// PlantAddress is the Modbus slave address the plant-level registers
// (remote EMS enable/mode, active power target, ESS charge/discharge
// limits) answer on (Section 5.2 of the Sigenergy Modbus protocol).
const PlantAddress = 247

// SigenModbusClient is a thin wrapper around goburrow/modbus scoped to the
// plant-level remote-EMS registers a dispatch Actuator needs to push a
// solved BESS decision onto a live plant. It does not expose the protocol's
// telemetry-read or per-inverter/per-charger registers — those belong to a
// monitoring surface this system doesn't implement (SPEC_FULL.md scopes
// dispatch planning and single-step BESS actuation, not plant telemetry).
type SigenModbusClient struct {
	client  modbus.Client
	handler *modbus.TCPClientHandler
}

// NewTCPClient connects to a Sigenergy plant's Modbus TCP gateway.
func NewTCPClient(address string, slaveID byte) (*SigenModbusClient, error) {
	handler := modbus.NewTCPClientHandler(address)
	handler.SlaveId = slaveID
	handler.Timeout = 1 * time.Second

	if err := handler.Connect(); err != nil {
		return nil, fmt.Errorf("sigenergy: connect to %s: %w", address, err)
	}

	return &SigenModbusClient{
		client:  modbus.NewClient(handler),
		handler: handler,
	}, nil
}

// Close closes the Modbus connection.
func (c *SigenModbusClient) Close() error {
	if c.handler == nil {
		return nil
	}
	return c.handler.Close()
}

// setPlantSlave points subsequent requests at the plant-level slave
// address, regardless of whatever slave ID the client was constructed
// with — every method below operates on plant registers, never a specific
// inverter or charger.
func (c *SigenModbusClient) setPlantSlave() {
	c.handler.SlaveId = PlantAddress
}

func u32ToBytes(val uint32) []byte {
	return []byte{byte(val >> 24), byte(val >> 16), byte(val >> 8), byte(val)}
}

func s32ToBytes(val int32) []byte {
	return u32ToBytes(uint32(val))
}

// SetActivePowerFixed sets the plant's fixed active power target (kW).
// Positive values draw from the grid/ESS discharge, negative values charge.
func (c *SigenModbusClient) SetActivePowerFixed(powerKW float64) error {
	c.setPlantSlave()
	value := int32(powerKW * 1000)
	_, err := c.client.WriteMultipleRegisters(40001, 2, s32ToBytes(value))
	return err
}

// EnableRemoteEMS enables or disables remote EMS control of the plant.
func (c *SigenModbusClient) EnableRemoteEMS(enable bool) error {
	c.setPlantSlave()
	var value uint16
	if enable {
		value = 1
	}
	_, err := c.client.WriteSingleRegister(40029, value)
	return err
}

// SetRemoteEMSMode sets the remote EMS control mode:
// 0: PCS remote control, 1: Standby, 2: Maximum self-consumption,
// 3: Command charging (grid first), 4: Command charging (PV first),
// 5: Command discharging (PV first), 6: Command discharging (ESS first).
func (c *SigenModbusClient) SetRemoteEMSMode(mode uint16) error {
	c.setPlantSlave()
	_, err := c.client.WriteSingleRegister(40031, mode)
	return err
}

// SetESSMaxChargingLimit sets the ESS max charging limit (kW).
func (c *SigenModbusClient) SetESSMaxChargingLimit(powerKW float64) error {
	c.setPlantSlave()
	value := uint32(powerKW * 1000)
	_, err := c.client.WriteMultipleRegisters(40032, 2, u32ToBytes(value))
	return err
}

// SetESSMaxDischargingLimit sets the ESS max discharging limit (kW).
func (c *SigenModbusClient) SetESSMaxDischargingLimit(powerKW float64) error {
	c.setPlantSlave()
	value := uint32(powerKW * 1000)
	_, err := c.client.WriteMultipleRegisters(40034, 2, u32ToBytes(value))
	return err
}
