package sigenergy

import (
	"context"
	"fmt"
	"log"

	"github.com/devskill-org/dcdispatch/dispatch"
)

// Remote EMS control modes (Section 5.2); only the charge/discharge/standby
// modes relevant to applying a dispatch decision are named here.
const (
	modeStandby              = 1
	modeCommandChargeGrid    = 3
	modeCommandDischargeESS  = 6
)

// Actuator applies the first step of a solved dispatch.Result to a live
// Sigenergy plant over Modbus. It holds no dispatch state of its own; every
// call re-derives the target from whatever Result it is given.
type Actuator struct {
	client *SigenModbusClient
	logger *log.Logger
}

// NewActuator wraps an already-connected Modbus client.
func NewActuator(client *SigenModbusClient, logger *log.Logger) *Actuator {
	return &Actuator{client: client, logger: logger}
}

// ApplyDispatch pushes the plan's step-0 BESS charge/discharge power to the
// plant's remote EMS registers. Only step 0 is ever applied — a planner
// re-solves and calls ApplyDispatch again for the next step, the same
// receding-horizon contract the teacher's MPC controller used.
func (a *Actuator) ApplyDispatch(ctx context.Context, res *dispatch.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(res.Dispatch.Charge) == 0 || len(res.Dispatch.Discharge) == 0 {
		return fmt.Errorf("sigenergy: dispatch result has no steps to apply")
	}

	chargeKW := res.Dispatch.Charge[0] * 1000
	dischargeKW := res.Dispatch.Discharge[0] * 1000

	if err := a.client.EnableRemoteEMS(true); err != nil {
		return fmt.Errorf("sigenergy: enable remote EMS: %w", err)
	}
	if err := a.client.SetESSMaxChargingLimit(res.SizingMW * 1000); err != nil {
		return fmt.Errorf("sigenergy: set charge limit: %w", err)
	}
	if err := a.client.SetESSMaxDischargingLimit(res.SizingMW * 1000); err != nil {
		return fmt.Errorf("sigenergy: set discharge limit: %w", err)
	}

	switch {
	case chargeKW > dischargeKW:
		if err := a.client.SetRemoteEMSMode(modeCommandChargeGrid); err != nil {
			return fmt.Errorf("sigenergy: set charge mode: %w", err)
		}
		if err := a.client.SetActivePowerFixed(chargeKW); err != nil {
			return fmt.Errorf("sigenergy: set active power target: %w", err)
		}
	case dischargeKW > chargeKW:
		if err := a.client.SetRemoteEMSMode(modeCommandDischargeESS); err != nil {
			return fmt.Errorf("sigenergy: set discharge mode: %w", err)
		}
		if err := a.client.SetActivePowerFixed(-dischargeKW); err != nil {
			return fmt.Errorf("sigenergy: set active power target: %w", err)
		}
	default:
		if err := a.client.SetRemoteEMSMode(modeStandby); err != nil {
			return fmt.Errorf("sigenergy: set standby mode: %w", err)
		}
		if err := a.client.SetActivePowerFixed(0); err != nil {
			return fmt.Errorf("sigenergy: set active power target: %w", err)
		}
	}

	if a.logger != nil {
		a.logger.Printf("sigenergy: applied dispatch step: charge=%.3fkW discharge=%.3fkW", chargeKW, dischargeKW)
	}
	return nil
}
