package catalog

import (
	"github.com/danmuck/pcodec/internal/protocol"
)

// Peripheral numbers (PNUM).
const (
	PeriphCoordinator uint8 = 0x00
	PeriphNode        uint8 = 0x01
	PeriphOS          uint8 = 0x02
	PeriphEEPROM      uint8 = 0x03
	PeriphEEEPROM     uint8 = 0x04
	PeriphRAM         uint8 = 0x05
	PeriphLEDR        uint8 = 0x06
	PeriphLEDG        uint8 = 0x07
	PeriphIO          uint8 = 0x09
	PeriphThermometer uint8 = 0x0A
	PeriphUART        uint8 = 0x0C
	PeriphFRC         uint8 = 0x0D
)

// Coordinator commands.
const (
	CmdCoordinatorAddrInfo      uint8 = 0x00
	CmdCoordinatorClearAllBonds uint8 = 0x03
	CmdCoordinatorBondNode      uint8 = 0x04
	CmdCoordinatorRemoveBond    uint8 = 0x05
	CmdCoordinatorDiscovery     uint8 = 0x07
	CmdCoordinatorSetDPAParams  uint8 = 0x08
	CmdCoordinatorSetHops       uint8 = 0x09
)

// Node commands.
const (
	CmdNodeRemoveBond uint8 = 0x01
)

// OS commands.
const (
	CmdOSReset    uint8 = 0x01
	CmdOSIndicate uint8 = 0x07
	CmdOSRestart  uint8 = 0x08
)

// LED commands, shared by LEDR and LEDG.
const (
	CmdLEDSetOff   uint8 = 0x00
	CmdLEDSetOn    uint8 = 0x01
	CmdLEDPulse    uint8 = 0x03
	CmdLEDFlashing uint8 = 0x04
)

// MaxNodeAddr is the highest bondable node address.
const MaxNodeAddr = 0xEF

func req(pnum, pcmd uint8) protocol.Key {
	return protocol.Key{Peripheral: pnum, Command: pcmd, Direction: protocol.Request}
}

func rsp(pnum, pcmd uint8) protocol.Key {
	return protocol.Key{Peripheral: pnum, Command: pcmd, Direction: protocol.Response}
}

var schemas = []*protocol.CommandSchema{
	protocol.MustCommandSchema("coordinator.addr_info", req(PeriphCoordinator, CmdCoordinatorAddrInfo)),
	protocol.MustCommandSchema("coordinator.addr_info", rsp(PeriphCoordinator, CmdCoordinatorAddrInfo),
		protocol.U8("dev_nr").Bounded(0, MaxNodeAddr),
		protocol.U8("did"),
	),
	protocol.MustCommandSchema("coordinator.clear_all_bonds", req(PeriphCoordinator, CmdCoordinatorClearAllBonds)),
	protocol.MustCommandSchema("coordinator.clear_all_bonds", rsp(PeriphCoordinator, CmdCoordinatorClearAllBonds)),
	protocol.MustCommandSchema("coordinator.bond_node", req(PeriphCoordinator, CmdCoordinatorBondNode),
		protocol.U8("req_addr").Bounded(0, MaxNodeAddr),
		protocol.U8("bonding_mask"),
	),
	protocol.MustCommandSchema("coordinator.bond_node", rsp(PeriphCoordinator, CmdCoordinatorBondNode),
		protocol.U8("bond_addr").Bounded(1, MaxNodeAddr),
		protocol.U8("dev_nr").Bounded(0, MaxNodeAddr),
	),
	protocol.MustCommandSchema("coordinator.remove_bond", req(PeriphCoordinator, CmdCoordinatorRemoveBond),
		protocol.U8("bond_addr").Bounded(1, MaxNodeAddr),
	),
	protocol.MustCommandSchema("coordinator.remove_bond", rsp(PeriphCoordinator, CmdCoordinatorRemoveBond),
		protocol.U8("dev_nr").Bounded(0, MaxNodeAddr),
	),
	protocol.MustCommandSchema("coordinator.discovery", req(PeriphCoordinator, CmdCoordinatorDiscovery),
		protocol.U8("tx_power").Bounded(0, 7),
		protocol.U8("max_addr").Bounded(0, MaxNodeAddr),
	),
	protocol.MustCommandSchema("coordinator.discovery", rsp(PeriphCoordinator, CmdCoordinatorDiscovery),
		protocol.U8("disc_nr").Bounded(0, MaxNodeAddr),
	),
	protocol.MustCommandSchema("coordinator.set_dpa_params", req(PeriphCoordinator, CmdCoordinatorSetDPAParams),
		protocol.U8("dpa_param"),
	),
	protocol.MustCommandSchema("coordinator.set_dpa_params", rsp(PeriphCoordinator, CmdCoordinatorSetDPAParams),
		protocol.U8("dpa_param"),
	),
	protocol.MustCommandSchema("coordinator.set_hops", req(PeriphCoordinator, CmdCoordinatorSetHops),
		protocol.U8("request_hops"),
		protocol.U8("response_hops"),
	),
	protocol.MustCommandSchema("coordinator.set_hops", rsp(PeriphCoordinator, CmdCoordinatorSetHops),
		protocol.U8("request_hops"),
		protocol.U8("response_hops"),
	),
	protocol.MustCommandSchema("node.remove_bond", req(PeriphNode, CmdNodeRemoveBond)),
	protocol.MustCommandSchema("node.remove_bond", rsp(PeriphNode, CmdNodeRemoveBond)),
	protocol.MustCommandSchema("os.reset", req(PeriphOS, CmdOSReset)),
	protocol.MustCommandSchema("os.reset", rsp(PeriphOS, CmdOSReset)),
	protocol.MustCommandSchema("os.indicate", req(PeriphOS, CmdOSIndicate),
		protocol.U8("control").Bounded(0, 3),
	),
	protocol.MustCommandSchema("os.indicate", rsp(PeriphOS, CmdOSIndicate)),
	protocol.MustCommandSchema("os.restart", req(PeriphOS, CmdOSRestart)),
	protocol.MustCommandSchema("os.restart", rsp(PeriphOS, CmdOSRestart)),
}

func init() {
	for _, led := range []struct {
		name string
		pnum uint8
	}{
		{"ledr", PeriphLEDR},
		{"ledg", PeriphLEDG},
	} {
		for _, cmd := range []struct {
			name string
			pcmd uint8
		}{
			{"set_off", CmdLEDSetOff},
			{"set_on", CmdLEDSetOn},
			{"pulse", CmdLEDPulse},
			{"flashing", CmdLEDFlashing},
		} {
			name := led.name + "." + cmd.name
			schemas = append(schemas,
				protocol.MustCommandSchema(name, req(led.pnum, cmd.pcmd)),
				protocol.MustCommandSchema(name, rsp(led.pnum, cmd.pcmd)),
			)
		}
	}
}

// Register adds every built-in schema to reg.
func Register(reg *protocol.Registry) error {
	for _, s := range schemas {
		if err := reg.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// Default returns a registry holding the built-in DPA command table.
func Default() *protocol.Registry {
	reg := protocol.NewRegistry()
	if err := Register(reg); err != nil {
		panic(err)
	}
	return reg
}

// Schemas returns the built-in schemas in declaration order.
func Schemas() []*protocol.CommandSchema {
	out := make([]*protocol.CommandSchema, len(schemas))
	copy(out, schemas)
	return out
}
