package network

// Message IDs. Client requests are 1xx, server events are 3xx.
// CreateRoom and JoinRoom replies are sent back under the request ID.
const (
	MsgTypeHeartbeat = 1

	MsgTypeCreateRoom    = 101
	MsgTypeJoinRoom      = 102
	MsgTypeStartGame     = 103
	MsgTypePlayCard      = 104
	MsgTypeCaptainSelect = 105
	MsgTypeUseAbility    = 106
	MsgTypeProposeCoup   = 107
	MsgTypeVoteCoup      = 108
	MsgTypeNextRound     = 109
	MsgTypeEndGame       = 110
	MsgTypeChatPublic    = 111
	MsgTypeChatPrivate   = 112

	MsgTypeStateUpdate = 301
	MsgTypeGameStarted = 302
	MsgTypeNewRound    = 303
	MsgTypeDealCards   = 304
	MsgTypeObjective   = 305
	MsgTypeCardPlayed  = 306
	MsgTypeCardOffered = 307
	MsgTypeAbilityUsed = 308
	MsgTypeVoteStarted = 309
	MsgTypeCoupResult  = 310
	MsgTypeGameEnded   = 311
	MsgTypeChatMessage = 312
	MsgTypeChatNotice  = 313
)
