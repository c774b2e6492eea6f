package pdu

import "fmt"

// Status is the command_status field carried in every PDU header
// (SMPP 3.4 §5.1.3 and Appendix A).
type Status uint32

// SMPP 3.4 Appendix A command status values.
const (
	StatusOK                Status = 0x00000000
	StatusInvMsgLen         Status = 0x00000001
	StatusInvCmdLen         Status = 0x00000002
	StatusInvCmdID          Status = 0x00000003
	StatusInvBnd            Status = 0x00000004
	StatusAlyBnd            Status = 0x00000005
	StatusInvPrtFlg         Status = 0x00000006
	StatusInvRegDlvFlg      Status = 0x00000007
	StatusSysErr            Status = 0x00000008
	StatusInvSrcAdr         Status = 0x0000000A
	StatusInvDstAdr         Status = 0x0000000B
	StatusInvMsgID          Status = 0x0000000C
	StatusBindFail          Status = 0x0000000D
	StatusInvPaswd          Status = 0x0000000E
	StatusInvSysID          Status = 0x0000000F
	StatusCancelFail        Status = 0x00000011
	StatusReplaceFail       Status = 0x00000013
	StatusMsgQFul           Status = 0x00000014
	StatusInvSerTyp         Status = 0x00000015
	StatusInvNumDe          Status = 0x00000033
	StatusInvDLName         Status = 0x00000034
	StatusInvDestFlag       Status = 0x00000040
	StatusInvSubRep         Status = 0x00000042
	StatusInvEsmClass       Status = 0x00000043
	StatusCntSubDL          Status = 0x00000044
	StatusSubmitFail        Status = 0x00000045
	StatusInvSrcTON         Status = 0x00000048
	StatusInvSrcNPI         Status = 0x00000049
	StatusInvDstTON         Status = 0x00000050
	StatusInvDstNPI         Status = 0x00000051
	StatusInvSysTyp         Status = 0x00000053
	StatusInvRepFlag        Status = 0x00000054
	StatusInvNumMsgs        Status = 0x00000055
	StatusThrottled         Status = 0x00000058
	StatusInvSched          Status = 0x00000061
	StatusInvExpiry         Status = 0x00000062
	StatusInvDftMsgID       Status = 0x00000063
	StatusTempAppErr        Status = 0x00000064
	StatusPermAppErr        Status = 0x00000065
	StatusRejeAppErr        Status = 0x00000066
	StatusQueryFail         Status = 0x00000067
	StatusInvOptParStream   Status = 0x000000C0
	StatusOptParNotAllwd    Status = 0x000000C1
	StatusInvParLen         Status = 0x000000C2
	StatusMissingOptParam   Status = 0x000000C3
	StatusInvOptParamVal    Status = 0x000000C4
	StatusDeliveryFailure   Status = 0x000000FE
	StatusUnknownErr        Status = 0x000000FF
)

var statusText = map[Status]string{
	StatusOK:              "ESME_ROK",
	StatusInvMsgLen:       "ESME_RINVMSGLEN",
	StatusInvCmdLen:       "ESME_RINVCMDLEN",
	StatusInvCmdID:        "ESME_RINVCMDID",
	StatusInvBnd:          "ESME_RINVBNDSTS",
	StatusAlyBnd:          "ESME_RALYBND",
	StatusInvPrtFlg:       "ESME_RINVPRTFLG",
	StatusInvRegDlvFlg:    "ESME_RINVREGDLVFLG",
	StatusSysErr:          "ESME_RSYSERR",
	StatusInvSrcAdr:       "ESME_RINVSRCADR",
	StatusInvDstAdr:       "ESME_RINVDSTADR",
	StatusInvMsgID:        "ESME_RINVMSGID",
	StatusBindFail:        "ESME_RBINDFAIL",
	StatusInvPaswd:        "ESME_RINVPASWD",
	StatusInvSysID:        "ESME_RINVSYSID",
	StatusCancelFail:      "ESME_RCANCELFAIL",
	StatusReplaceFail:     "ESME_RREPLACEFAIL",
	StatusMsgQFul:         "ESME_RMSGQFUL",
	StatusInvSerTyp:       "ESME_RINVSERTYP",
	StatusInvNumDe:        "ESME_RINVNUMDESTS",
	StatusInvDLName:       "ESME_RINVDLNAME",
	StatusInvDestFlag:     "ESME_RINVDESTFLAG",
	StatusInvSubRep:       "ESME_RINVSUBREP",
	StatusInvEsmClass:     "ESME_RINVESMCLASS",
	StatusCntSubDL:        "ESME_RCNTSUBDL",
	StatusSubmitFail:      "ESME_RSUBMITFAIL",
	StatusInvSrcTON:       "ESME_RINVSRCTON",
	StatusInvSrcNPI:       "ESME_RINVSRCNPI",
	StatusInvDstTON:       "ESME_RINVDSTTON",
	StatusInvDstNPI:       "ESME_RINVDSTNPI",
	StatusInvSysTyp:       "ESME_RINVSYSTYP",
	StatusInvRepFlag:      "ESME_RINVREPFLAG",
	StatusInvNumMsgs:      "ESME_RINVNUMMSGS",
	StatusThrottled:       "ESME_RTHROTTLED",
	StatusInvSched:        "ESME_RINVSCHED",
	StatusInvExpiry:       "ESME_RINVEXPIRY",
	StatusInvDftMsgID:     "ESME_RINVDFTMSGID",
	StatusTempAppErr:      "ESME_RX_T_APPN",
	StatusPermAppErr:      "ESME_RX_P_APPN",
	StatusRejeAppErr:      "ESME_RX_R_APPN",
	StatusQueryFail:       "ESME_RQUERYFAIL",
	StatusInvOptParStream: "ESME_RINVOPTPARSTREAM",
	StatusOptParNotAllwd:  "ESME_ROPTPARNOTALLWD",
	StatusInvParLen:       "ESME_RINVPARLEN",
	StatusMissingOptParam: "ESME_RMISSINGOPTPARAM",
	StatusInvOptParamVal:  "ESME_RINVOPTPARAMVAL",
	StatusDeliveryFailure: "ESME_RDELIVERYFAILURE",
	StatusUnknownErr:      "ESME_RUNKNOWNERR",
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if text, ok := statusText[s]; ok {
		return text
	}
	return fmt.Sprintf("ESME_RUNKNOWN(0x%08X)", uint32(s))
}

// OK reports whether the status indicates success.
func (s Status) OK() bool {
	return s == StatusOK
}
