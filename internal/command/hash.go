package command

import (
	"strconv"

	"github.com/edirooss/resp-store/internal/dict"
	"github.com/edirooss/resp-store/internal/resp"
)

func init() {
	register("hset", parseHSet)
	register("hsetnx", parseHSetNX)
	register("hget", parseHGet)
	register("hmget", parseHMGet)
	register("hgetall", parseHGetAll)
	register("hdel", parseHDel)
	register("hexists", parseHExists)
	register("hincrby", parseHIncrBy)
}

func kvpOrInsert(tx *dict.Txn, key []byte) (*dict.Kvp, error) {
	e, _ := tx.GetOrInsert(key, dict.NewKvp())
	k, ok := e.Value.(*dict.Kvp)
	if !ok {
		return nil, dict.ErrWrongType
	}
	return k, nil
}

func kvpRead(v *dict.View, key []byte) (*dict.Kvp, bool, error) {
	e, ok := v.Get(key)
	if !ok {
		return nil, false, nil
	}
	k, ok := e.Value.(*dict.Kvp)
	if !ok {
		return nil, false, dict.ErrWrongType
	}
	return k, true, nil
}

// --- HSET / HSETNX ---------------------------------------------------------

type HSet struct {
	Key     []byte
	Pairs   map[string][]byte
	order   [][]byte // field bytes in request order; HSETNX checks order[0]
	nx      bool
	rawArgs [][]byte
}

func (c *HSet) Name() string {
	if c.nx {
		return "HSETNX"
	}
	return "HSET"
}

func parseHSet(args [][]byte) (Command, error) {
	if len(args) < 3 || len(args)%2 != 1 {
		return nil, wrongArity("HSET")
	}
	return buildHSet(args, false)
}

func parseHSetNX(args [][]byte) (Command, error) {
	if len(args) != 3 {
		return nil, wrongArity("HSETNX")
	}
	return buildHSet(args, true)
}

func buildHSet(args [][]byte, nx bool) (Command, error) {
	c := &HSet{Key: args[0], Pairs: make(map[string][]byte), nx: nx, rawArgs: args}
	for i := 1; i < len(args); i += 2 {
		field, val := args[i], args[i+1]
		c.order = append(c.order, field)
		c.Pairs[string(field)] = val
	}
	return c, nil
}

func (c *HSet) ApplyWrite(tx *dict.Txn) (resp.Frame, ExpiresStatus, error) {
	k, err := kvpOrInsert(tx, c.Key)
	if err != nil {
		return resp.Frame{}, ExpiresStatus{}, err
	}
	if c.nx {
		if k.Exists(string(c.order[0])) {
			return resp.Integer(0), ExpiresStatus{}, nil
		}
		k.Set(dict.SetAlways, c.Pairs)
		return resp.Integer(1), ExpiresStatus{}, nil
	}
	res := k.Set(dict.SetAlways, c.Pairs)
	created := res.NewLen - res.OldLen
	if created < 0 {
		created = 0
	}
	return resp.Integer(int64(created)), ExpiresStatus{}, nil
}

func (c *HSet) WireArgs() WireCmd { return WireCmd{Name: c.Name(), Args: c.rawArgs} }

// --- HGET ------------------------------------------------------------------

type HGet struct{ Key, Field []byte }

func (*HGet) Name() string { return "HGET" }

func parseHGet(args [][]byte) (Command, error) {
	if len(args) != 2 {
		return nil, wrongArity("HGET")
	}
	return &HGet{Key: args[0], Field: args[1]}, nil
}

func (c *HGet) ApplyRead(v *dict.View) (resp.Frame, error) {
	k, ok, err := kvpRead(v, c.Key)
	if err != nil {
		return resp.Frame{}, err
	}
	if !ok {
		return resp.BulkNil(), nil
	}
	val, ok := k.Get(string(c.Field))
	if !ok {
		return resp.BulkNil(), nil
	}
	return resp.Bulk(val), nil
}

// --- HMGET -------------------------------------------------------------

type HMGet struct {
	Key    []byte
	Fields [][]byte
}

func (*HMGet) Name() string { return "HMGET" }

func parseHMGet(args [][]byte) (Command, error) {
	if len(args) < 2 {
		return nil, wrongArity("HMGET")
	}
	return &HMGet{Key: args[0], Fields: args[1:]}, nil
}

func (c *HMGet) ApplyRead(v *dict.View) (resp.Frame, error) {
	fields := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		fields[i] = string(f)
	}
	k, ok, err := kvpRead(v, c.Key)
	if err != nil {
		return resp.Frame{}, err
	}
	items := make([]resp.Frame, len(fields))
	if !ok {
		for i := range items {
			items[i] = resp.BulkNil()
		}
		return resp.Array(items), nil
	}
	vals := k.GetMulti(fields)
	for i, v := range vals {
		if v == nil {
			items[i] = resp.BulkNil()
		} else {
			items[i] = resp.Bulk(v)
		}
	}
	return resp.Array(items), nil
}

// --- HGETALL -------------------------------------------------------------

type HGetAll struct{ Key []byte }

func (*HGetAll) Name() string { return "HGETALL" }

func parseHGetAll(args [][]byte) (Command, error) {
	if len(args) != 1 {
		return nil, wrongArity("HGETALL")
	}
	return &HGetAll{Key: args[0]}, nil
}

func (c *HGetAll) ApplyRead(v *dict.View) (resp.Frame, error) {
	k, ok, err := kvpRead(v, c.Key)
	if err != nil {
		return resp.Frame{}, err
	}
	if !ok {
		return resp.Array(nil), nil
	}
	all := k.GetAll()
	items := make([]resp.Frame, 0, len(all)*2)
	for f, val := range all {
		items = append(items, resp.Bulk([]byte(f)), resp.Bulk(val))
	}
	return resp.Array(items), nil
}

// --- HDEL ------------------------------------------------------------------

type HDel struct {
	Key    []byte
	Fields [][]byte
}

func (*HDel) Name() string { return "HDEL" }

func parseHDel(args [][]byte) (Command, error) {
	if len(args) < 2 {
		return nil, wrongArity("HDEL")
	}
	return &HDel{Key: args[0], Fields: args[1:]}, nil
}

func (c *HDel) ApplyWrite(tx *dict.Txn) (resp.Frame, ExpiresStatus, error) {
	e, ok := tx.Get(c.Key)
	if !ok {
		return resp.Integer(0), ExpiresStatus{}, nil
	}
	k, ok := e.Value.(*dict.Kvp)
	if !ok {
		return resp.Frame{}, ExpiresStatus{}, dict.ErrWrongType
	}
	fields := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		fields[i] = string(f)
	}
	n := k.Del(fields)
	if k.Len() == 0 {
		tx.Remove(c.Key)
	}
	return resp.Integer(int64(n)), ExpiresStatus{}, nil
}

func (c *HDel) WireArgs() WireCmd {
	return WireCmd{Name: "HDEL", Args: append([][]byte{c.Key}, c.Fields...)}
}

// --- HEXISTS ---------------------------------------------------------------

type HExists struct{ Key, Field []byte }

func (*HExists) Name() string { return "HEXISTS" }

func parseHExists(args [][]byte) (Command, error) {
	if len(args) != 2 {
		return nil, wrongArity("HEXISTS")
	}
	return &HExists{Key: args[0], Field: args[1]}, nil
}

func (c *HExists) ApplyRead(v *dict.View) (resp.Frame, error) {
	k, ok, err := kvpRead(v, c.Key)
	if err != nil {
		return resp.Frame{}, err
	}
	if !ok || !k.Exists(string(c.Field)) {
		return resp.Integer(0), nil
	}
	return resp.Integer(1), nil
}

// --- HINCRBY -------------------------------------------------------------

type HIncrBy struct {
	Key, Field []byte
	Delta      int64
}

func (*HIncrBy) Name() string { return "HINCRBY" }

func parseHIncrBy(args [][]byte) (Command, error) {
	if len(args) != 3 {
		return nil, wrongArity("HINCRBY")
	}
	d, err := strconv.ParseInt(string(args[2]), 10, 64)
	if err != nil {
		return nil, parseErrf("ERR value is not an integer or out of range")
	}
	return &HIncrBy{Key: args[0], Field: args[1], Delta: d}, nil
}

func (c *HIncrBy) ApplyWrite(tx *dict.Txn) (resp.Frame, ExpiresStatus, error) {
	k, err := kvpOrInsert(tx, c.Key)
	if err != nil {
		return resp.Frame{}, ExpiresStatus{}, err
	}
	v, err := k.IncrBy(string(c.Field), c.Delta)
	if err != nil {
		return resp.Frame{}, ExpiresStatus{}, err
	}
	return resp.Integer(v), ExpiresStatus{}, nil
}

func (c *HIncrBy) WireArgs() WireCmd {
	return WireCmd{Name: "HINCRBY", Args: [][]byte{c.Key, c.Field, []byte(strconv.FormatInt(c.Delta, 10))}}
}
