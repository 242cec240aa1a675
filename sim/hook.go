package sim

import "github.com/sarchlab/dasim/sim/hooking"

// HookPosRoundStart is triggered before a round is released. The item is the
// round number.
var HookPosRoundStart = &hooking.HookPos{Name: "RoundStart"}

// HookPosMsgSend is triggered for every message sent in a round, after the
// round is closed. The item is the *Msg.
var HookPosMsgSend = &hooking.HookPos{Name: "MsgSend"}

// HookPosNodeDecided is triggered when a node reports its decision. The item
// is the NodeReport.
var HookPosNodeDecided = &hooking.HookPos{Name: "NodeDecided"}

// HookPosRoundEnd is triggered after all the nodes have finished a round. The
// item is the RoundSummary.
var HookPosRoundEnd = &hooking.HookPos{Name: "RoundEnd"}

// HookPosAbort is triggered when the simulation is aborted. The item is the
// error.
var HookPosAbort = &hooking.HookPos{Name: "Abort"}
