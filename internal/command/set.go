package command

import (
	"github.com/edirooss/resp-store/internal/dict"
	"github.com/edirooss/resp-store/internal/resp"
)

func init() {
	register("sadd", parseSAdd)
	register("srem", parseSRem)
	register("sismember", parseSIsMember)
	register("smismember", parseSMIsMember)
	register("smembers", parseSMembers)
}

func setOrInsert(tx *dict.Txn, key []byte) (*dict.Set, error) {
	e, _ := tx.GetOrInsert(key, dict.NewSet())
	s, ok := e.Value.(*dict.Set)
	if !ok {
		return nil, dict.ErrWrongType
	}
	return s, nil
}

func setRead(v *dict.View, key []byte) (*dict.Set, bool, error) {
	e, ok := v.Get(key)
	if !ok {
		return nil, false, nil
	}
	s, ok := e.Value.(*dict.Set)
	if !ok {
		return nil, false, dict.ErrWrongType
	}
	return s, true, nil
}

// --- SADD --------------------------------------------------------------

type SAdd struct {
	Key     []byte
	Members [][]byte
}

func (*SAdd) Name() string { return "SADD" }

func parseSAdd(args [][]byte) (Command, error) {
	if len(args) < 2 {
		return nil, wrongArity("SADD")
	}
	return &SAdd{Key: args[0], Members: args[1:]}, nil
}

func (c *SAdd) ApplyWrite(tx *dict.Txn) (resp.Frame, ExpiresStatus, error) {
	s, err := setOrInsert(tx, c.Key)
	if err != nil {
		return resp.Frame{}, ExpiresStatus{}, err
	}
	members := make([]string, len(c.Members))
	for i, m := range c.Members {
		members[i] = string(m)
	}
	res := s.Add(members...)
	return resp.Integer(int64(res.NewLen - res.OldLen)), ExpiresStatus{}, nil
}

func (c *SAdd) WireArgs() WireCmd {
	return WireCmd{Name: "SADD", Args: append([][]byte{c.Key}, c.Members...)}
}

// --- SREM --------------------------------------------------------------

type SRem struct {
	Key     []byte
	Members [][]byte
}

func (*SRem) Name() string { return "SREM" }

func parseSRem(args [][]byte) (Command, error) {
	if len(args) < 2 {
		return nil, wrongArity("SREM")
	}
	return &SRem{Key: args[0], Members: args[1:]}, nil
}

func (c *SRem) ApplyWrite(tx *dict.Txn) (resp.Frame, ExpiresStatus, error) {
	e, ok := tx.Get(c.Key)
	if !ok {
		return resp.Integer(0), ExpiresStatus{}, nil
	}
	s, ok := e.Value.(*dict.Set)
	if !ok {
		return resp.Frame{}, ExpiresStatus{}, dict.ErrWrongType
	}
	members := make([]string, len(c.Members))
	for i, m := range c.Members {
		members[i] = string(m)
	}
	n := s.Remove(members...)
	if s.Len() == 0 {
		tx.Remove(c.Key)
	}
	return resp.Integer(int64(n)), ExpiresStatus{}, nil
}

func (c *SRem) WireArgs() WireCmd {
	return WireCmd{Name: "SREM", Args: append([][]byte{c.Key}, c.Members...)}
}

// --- SISMEMBER / SMISMEMBER ----------------------------------------------

type SIsMember struct {
	Key     []byte
	Members [][]byte
	multi   bool
}

func (c *SIsMember) Name() string {
	if c.multi {
		return "SMISMEMBER"
	}
	return "SISMEMBER"
}

func parseSIsMember(args [][]byte) (Command, error) {
	if len(args) != 2 {
		return nil, wrongArity("SISMEMBER")
	}
	return &SIsMember{Key: args[0], Members: args[1:2]}, nil
}

func parseSMIsMember(args [][]byte) (Command, error) {
	if len(args) < 2 {
		return nil, wrongArity("SMISMEMBER")
	}
	return &SIsMember{Key: args[0], Members: args[1:], multi: true}, nil
}

func (c *SIsMember) ApplyRead(v *dict.View) (resp.Frame, error) {
	s, ok, err := setRead(v, c.Key)
	if err != nil {
		return resp.Frame{}, err
	}
	members := make([]string, len(c.Members))
	for i, m := range c.Members {
		members[i] = string(m)
	}
	var exists []bool
	if ok {
		exists = s.Exists(members...)
	} else {
		exists = make([]bool, len(members))
	}
	if !c.multi {
		if exists[0] {
			return resp.Integer(1), nil
		}
		return resp.Integer(0), nil
	}
	items := make([]resp.Frame, len(exists))
	for i, e := range exists {
		if e {
			items[i] = resp.Integer(1)
		} else {
			items[i] = resp.Integer(0)
		}
	}
	return resp.Array(items), nil
}

// --- SMEMBERS ----------------------------------------------------------

type SMembers struct{ Key []byte }

func (*SMembers) Name() string { return "SMEMBERS" }

func parseSMembers(args [][]byte) (Command, error) {
	if len(args) != 1 {
		return nil, wrongArity("SMEMBERS")
	}
	return &SMembers{Key: args[0]}, nil
}

func (c *SMembers) ApplyRead(v *dict.View) (resp.Frame, error) {
	s, ok, err := setRead(v, c.Key)
	if err != nil {
		return resp.Frame{}, err
	}
	if !ok {
		return resp.Array(nil), nil
	}
	all := s.GetAll()
	items := make([]resp.Frame, len(all))
	for i, m := range all {
		items[i] = resp.Bulk([]byte(m))
	}
	return resp.Array(items), nil
}
