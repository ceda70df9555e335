// Package pd implements the placement-driver message types and a stub
// service: server registration, heartbeat reporting, and the latest known
// status per group.
//
// Field sets grounded on original_source/component/common/src/pd_message.rs;
// the repository-aggregator shape (one struct fronting sub-repositories)
// grounded on the teacher's internal/redis/repo.go.
package pd

import "net"

// Message command names, matching the original's pd_message::cmd constants.
const (
	CmdServerInit         = "pd_sever_init"
	CmdServerHeartbeat    = "pd_sever_heartbeat"
	CmdLatestServerStatus = "pd_latest_server_status"
	CmdCreateGroup        = "pd_crate_group"
)

// ServerRole mirrors the original's Leader/Follower enum.
type ServerRole uint8

const (
	RoleLeader ServerRole = iota
	RoleFollower
)

// ServerStatus is reported by a store server on heartbeat, and returned by
// the placement driver in response to init and status queries.
type ServerStatus struct {
	ServerID          uint64
	GroupID           uint64
	Role              ServerRole
	HasLeader         bool
	CurrentLeaderID   uint64
	CurrentLeaderAddr net.Addr
}

// ServerInit is a store server's registration request.
type ServerInit struct {
	GroupID     uint64
	ServerAddr  net.Addr
	ForwardAddr net.Addr
}

// Service is the placement driver's in-memory registry: one entry per group,
// tracking each group's known servers and current leader.
type Service struct {
	groups map[uint64]*group
}

type group struct {
	servers   map[uint64]ServerStatus
	leader    uint64
	hasLeader bool
}

// NewService returns an empty placement-driver registry.
func NewService() *Service {
	return &Service{groups: make(map[uint64]*group)}
}

// Init registers a server under req.GroupID, electing it leader if the group
// has none yet, and returns the group's resulting status.
func (s *Service) Init(serverID uint64, req ServerInit) ServerStatus {
	g, ok := s.groups[req.GroupID]
	if !ok {
		g = &group{servers: make(map[uint64]ServerStatus)}
		s.groups[req.GroupID] = g
	}
	role := RoleFollower
	if !g.hasLeader {
		role = RoleLeader
		g.leader = serverID
		g.hasLeader = true
	}
	st := ServerStatus{ServerID: serverID, GroupID: req.GroupID, Role: role}
	g.servers[serverID] = st
	return s.latest(req.GroupID)
}

// Heartbeat records a server's self-reported status and returns the group's
// authoritative view, letting the server detect and correct role drift.
func (s *Service) Heartbeat(st ServerStatus) ServerStatus {
	g, ok := s.groups[st.GroupID]
	if !ok {
		g = &group{servers: make(map[uint64]ServerStatus)}
		s.groups[st.GroupID] = g
	}
	g.servers[st.ServerID] = st
	return s.latest(st.GroupID)
}

// Latest returns the group's current leader view.
func (s *Service) Latest(groupID uint64) ServerStatus {
	return s.latest(groupID)
}

func (s *Service) latest(groupID uint64) ServerStatus {
	g, ok := s.groups[groupID]
	if !ok || !g.hasLeader {
		return ServerStatus{GroupID: groupID}
	}
	leaderSt, ok := g.servers[g.leader]
	hasLeader := ok
	return ServerStatus{
		GroupID:         groupID,
		HasLeader:       hasLeader,
		CurrentLeaderID: g.leader,
		Role:            leaderSt.Role,
	}
}

// CreateGroup registers groupID as a fresh, leaderless group; an existing
// group with that id is left unchanged.
func (s *Service) CreateGroup(groupID uint64) {
	if _, ok := s.groups[groupID]; !ok {
		s.groups[groupID] = &group{servers: make(map[uint64]ServerStatus)}
	}
}
