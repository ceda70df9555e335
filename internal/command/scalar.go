package command

import (
	"strconv"
	"strings"

	"github.com/edirooss/resp-store/internal/dict"
	"github.com/edirooss/resp-store/internal/resp"
)

func init() {
	register("get", parseGet)
	register("set", parseSet)
	register("setex", parseSetEX)
	register("psetex", parsePSetEX)
	register("getset", parseGetSet)
	register("del", parseDel)
	register("exists", parseExists)
	register("incr", parseIncr)
	register("incrby", parseIncrBy)
	register("decr", parseDecr)
	register("decrby", parseDecrBy)
	register("ttl", parseTTL)
	register("pttl", parsePTTL)
	register("expire", parseExpireFamily("expire", unitSeconds, false))
	register("pexpire", parseExpireFamily("pexpire", unitMillis, false))
	register("expireat", parseExpireFamily("expireat", unitSeconds, true))
	register("pexpireat", parseExpireFamily("pexpireat", unitMillis, true))
}

// --- GET ---------------------------------------------------------------

type Get struct{ Key []byte }

func (*Get) Name() string { return "GET" }

func parseGet(args [][]byte) (Command, error) {
	if len(args) != 1 {
		return nil, wrongArity("GET")
	}
	return &Get{Key: args[0]}, nil
}

func (c *Get) ApplyRead(v *dict.View) (resp.Frame, error) {
	e, ok := v.Get(c.Key)
	if !ok {
		return resp.BulkNil(), nil
	}
	b, ok := dict.AsBytes(e.Value)
	if !ok {
		return resp.Frame{}, dict.ErrWrongType
	}
	return resp.Bulk(b), nil
}

// --- expirySpec shared by SET/SETEX/PSETEX ------------------------------

type expirySpec struct {
	keepTTL   bool
	hasExpiry bool
	absolute  bool
	relMillis int64
	absMillis int64
}

func (s expirySpec) resolve(nowMs, priorExpiresAt int64) int64 {
	switch {
	case s.keepTTL:
		return priorExpiresAt
	case s.hasExpiry && s.absolute:
		return s.absMillis
	case s.hasExpiry:
		return nowMs + s.relMillis
	default:
		return 0
	}
}

// --- SET -----------------------------------------------------------------

type Set struct {
	Key, Value []byte
	Expiry     expirySpec
	NX, XX     bool
	rawArgs    [][]byte
}

func (*Set) Name() string { return "SET" }

func parseSet(args [][]byte) (Command, error) {
	if len(args) < 2 {
		return nil, wrongArity("SET")
	}
	c := &Set{Key: args[0], Value: args[1], rawArgs: args}
	i := 2
	for i < len(args) {
		opt := strings.ToUpper(string(args[i]))
		switch opt {
		case "NX":
			if c.XX {
				return nil, parseErrf("ERR syntax error")
			}
			c.NX = true
			i++
		case "XX":
			if c.NX {
				return nil, parseErrf("ERR syntax error")
			}
			c.XX = true
			i++
		case "KEEPTTL":
			c.Expiry.keepTTL = true
			i++
		case "EX", "PX", "EXAT", "PXAT":
			if i+1 >= len(args) {
				return nil, parseErrf("ERR syntax error")
			}
			n, err := strconv.ParseInt(string(args[i+1]), 10, 64)
			if err != nil {
				return nil, parseErrf("ERR value is not an integer or out of range")
			}
			c.Expiry.hasExpiry = true
			switch opt {
			case "EX":
				c.Expiry.relMillis = n * 1000
			case "PX":
				c.Expiry.relMillis = n
			case "EXAT":
				c.Expiry.absolute = true
				c.Expiry.absMillis = n * 1000
			case "PXAT":
				c.Expiry.absolute = true
				c.Expiry.absMillis = n
			}
			i += 2
		default:
			return nil, parseErrf("ERR syntax error")
		}
	}
	return c, nil
}

func (c *Set) ApplyWrite(tx *dict.Txn) (resp.Frame, ExpiresStatus, error) {
	existing, exists := tx.Get(c.Key)
	if c.NX && exists {
		return resp.BulkNil(), ExpiresStatus{}, nil
	}
	if c.XX && !exists {
		return resp.BulkNil(), ExpiresStatus{}, nil
	}
	var priorExpiresAt int64
	if exists {
		priorExpiresAt = existing.ExpiresAt
	}
	newExpiresAt := c.Expiry.resolve(tx.Now(), priorExpiresAt)
	tx.Insert(c.Key, dict.Entry{Value: dict.Bytes(c.Value), ExpiresAt: newExpiresAt})
	status := ExpiresStatus{}
	if newExpiresAt != priorExpiresAt {
		status = ExpiresStatus{Kind: ExpiresUpdate, Key: c.Key, Before: priorExpiresAt, New: newExpiresAt}
	}
	return resp.OKFrame, status, nil
}

func (c *Set) WireArgs() WireCmd { return WireCmd{Name: "SET", Args: c.rawArgs} }

// --- SETEX / PSETEX --------------------------------------------------------

type setexLike struct {
	Key, Value []byte
	Seconds    int64 // as given: seconds, or ms when isMillis; converted to ms in ApplyWrite
	isMillis   bool
	rawArgs    [][]byte
	name       string
}

func (c *setexLike) Name() string { return c.name }

func parseSetExLike(name string, isMillis bool) Parser {
	return func(args [][]byte) (Command, error) {
		if len(args) != 3 {
			return nil, wrongArity(name)
		}
		n, err := strconv.ParseInt(string(args[1]), 10, 64)
		if err != nil {
			return nil, parseErrf("ERR value is not an integer or out of range")
		}
		if n <= 0 {
			return nil, parseErrf("ERR invalid expire time in '%s' command", strings.ToLower(name))
		}
		return &setexLike{Key: args[0], Value: args[2], Seconds: n, isMillis: isMillis, rawArgs: args, name: name}, nil
	}
}

func parseSetEX(args [][]byte) (Command, error)  { return parseSetExLike("SETEX", false)(args) }
func parsePSetEX(args [][]byte) (Command, error) { return parseSetExLike("PSETEX", true)(args) }

func (c *setexLike) ApplyWrite(tx *dict.Txn) (resp.Frame, ExpiresStatus, error) {
	var priorExpiresAt int64
	if existing, ok := tx.Get(c.Key); ok {
		priorExpiresAt = existing.ExpiresAt
	}
	ms := c.Seconds
	if !c.isMillis {
		ms *= 1000
	}
	newExpiresAt := tx.Now() + ms
	tx.Insert(c.Key, dict.Entry{Value: dict.Bytes(c.Value), ExpiresAt: newExpiresAt})
	return resp.OKFrame, ExpiresStatus{Kind: ExpiresUpdate, Key: c.Key, Before: priorExpiresAt, New: newExpiresAt}, nil
}

func (c *setexLike) WireArgs() WireCmd { return WireCmd{Name: c.name, Args: c.rawArgs} }

// --- GETSET ----------------------------------------------------------------

type GetSet struct {
	Key, Value []byte
}

func (*GetSet) Name() string { return "GETSET" }

func parseGetSet(args [][]byte) (Command, error) {
	if len(args) != 2 {
		return nil, wrongArity("GETSET")
	}
	return &GetSet{Key: args[0], Value: args[1]}, nil
}

func (c *GetSet) ApplyWrite(tx *dict.Txn) (resp.Frame, ExpiresStatus, error) {
	var reply resp.Frame = resp.BulkNil()
	var priorExpiresAt int64
	if existing, ok := tx.Get(c.Key); ok {
		if b, ok := dict.AsBytes(existing.Value); ok {
			reply = resp.Bulk(b)
		} else {
			return resp.Frame{}, ExpiresStatus{}, dict.ErrWrongType
		}
		priorExpiresAt = existing.ExpiresAt
	}
	tx.Insert(c.Key, dict.Entry{Value: dict.Bytes(c.Value)})
	status := ExpiresStatus{}
	if priorExpiresAt != 0 {
		status = ExpiresStatus{Kind: ExpiresUpdate, Key: c.Key, Before: priorExpiresAt, New: 0}
	}
	return reply, status, nil
}

func (c *GetSet) WireArgs() WireCmd { return WireCmd{Name: "GETSET", Args: [][]byte{c.Key, c.Value}} }

// --- DEL ---------------------------------------------------------------

type Del struct{ Keys [][]byte }

func (*Del) Name() string { return "DEL" }

func parseDel(args [][]byte) (Command, error) {
	if len(args) < 1 {
		return nil, wrongArity("DEL")
	}
	return &Del{Keys: args}, nil
}

func (c *Del) ApplyWrite(tx *dict.Txn) (resp.Frame, ExpiresStatus, error) {
	n := int64(0)
	for _, k := range c.Keys {
		if _, ok := tx.Remove(k); ok {
			n++
		}
	}
	return resp.Integer(n), ExpiresStatus{}, nil
}

func (c *Del) WireArgs() WireCmd { return WireCmd{Name: "DEL", Args: c.Keys} }

// --- EXISTS ------------------------------------------------------------

type Exists struct{ Keys [][]byte }

func (*Exists) Name() string { return "EXISTS" }

func parseExists(args [][]byte) (Command, error) {
	if len(args) < 1 {
		return nil, wrongArity("EXISTS")
	}
	return &Exists{Keys: args}, nil
}

func (c *Exists) ApplyRead(v *dict.View) (resp.Frame, error) {
	n := int64(0)
	for _, k := range c.Keys {
		if _, ok := v.Get(k); ok {
			n++
		}
	}
	return resp.Integer(n), nil
}

// --- INCR family ---------------------------------------------------------

func incrApply(tx *dict.Txn, key []byte, delta int64) (int64, ExpiresStatus, error) {
	e, created := tx.GetOrInsert(key, dict.Int(0))
	var cur int64
	if !created {
		switch t := e.Value.(type) {
		case dict.Int:
			cur = int64(t)
		case dict.Bytes, dict.Str:
			b, _ := dict.AsBytes(e.Value)
			v, err := strconv.ParseInt(string(b), 10, 64)
			if err != nil {
				return 0, ExpiresStatus{}, dict.ErrNotInteger
			}
			cur = v
		default:
			return 0, ExpiresStatus{}, dict.ErrWrongType
		}
	}
	next := cur + delta
	if (delta > 0 && next < cur) || (delta < 0 && next > cur) {
		return 0, ExpiresStatus{}, dict.ErrNotInteger
	}
	e.Value = dict.Int(next)
	return next, ExpiresStatus{}, nil
}

type Incr struct{ Key []byte }

func (*Incr) Name() string { return "INCR" }
func parseIncr(args [][]byte) (Command, error) {
	if len(args) != 1 {
		return nil, wrongArity("INCR")
	}
	return &Incr{Key: args[0]}, nil
}
func (c *Incr) ApplyWrite(tx *dict.Txn) (resp.Frame, ExpiresStatus, error) {
	v, st, err := incrApply(tx, c.Key, 1)
	if err != nil {
		return resp.Frame{}, ExpiresStatus{}, err
	}
	return resp.Integer(v), st, nil
}
func (c *Incr) WireArgs() WireCmd { return WireCmd{Name: "INCR", Args: [][]byte{c.Key}} }

type IncrBy struct {
	Key   []byte
	Delta int64
}

func (*IncrBy) Name() string { return "INCRBY" }
func parseIncrBy(args [][]byte) (Command, error) {
	if len(args) != 2 {
		return nil, wrongArity("INCRBY")
	}
	d, err := strconv.ParseInt(string(args[1]), 10, 64)
	if err != nil {
		return nil, parseErrf("ERR value is not an integer or out of range")
	}
	return &IncrBy{Key: args[0], Delta: d}, nil
}
func (c *IncrBy) ApplyWrite(tx *dict.Txn) (resp.Frame, ExpiresStatus, error) {
	v, st, err := incrApply(tx, c.Key, c.Delta)
	if err != nil {
		return resp.Frame{}, ExpiresStatus{}, err
	}
	return resp.Integer(v), st, nil
}
func (c *IncrBy) WireArgs() WireCmd {
	return WireCmd{Name: "INCRBY", Args: [][]byte{c.Key, []byte(strconv.FormatInt(c.Delta, 10))}}
}

type Decr struct{ Key []byte }

func (*Decr) Name() string { return "DECR" }
func parseDecr(args [][]byte) (Command, error) {
	if len(args) != 1 {
		return nil, wrongArity("DECR")
	}
	return &Decr{Key: args[0]}, nil
}
func (c *Decr) ApplyWrite(tx *dict.Txn) (resp.Frame, ExpiresStatus, error) {
	v, st, err := incrApply(tx, c.Key, -1)
	if err != nil {
		return resp.Frame{}, ExpiresStatus{}, err
	}
	return resp.Integer(v), st, nil
}
func (c *Decr) WireArgs() WireCmd { return WireCmd{Name: "DECR", Args: [][]byte{c.Key}} }

type DecrBy struct {
	Key   []byte
	Delta int64
}

func (*DecrBy) Name() string { return "DECRBY" }
func parseDecrBy(args [][]byte) (Command, error) {
	if len(args) != 2 {
		return nil, wrongArity("DECRBY")
	}
	d, err := strconv.ParseInt(string(args[1]), 10, 64)
	if err != nil {
		return nil, parseErrf("ERR value is not an integer or out of range")
	}
	return &DecrBy{Key: args[0], Delta: d}, nil
}
func (c *DecrBy) ApplyWrite(tx *dict.Txn) (resp.Frame, ExpiresStatus, error) {
	v, st, err := incrApply(tx, c.Key, -c.Delta)
	if err != nil {
		return resp.Frame{}, ExpiresStatus{}, err
	}
	return resp.Integer(v), st, nil
}
func (c *DecrBy) WireArgs() WireCmd {
	return WireCmd{Name: "DECRBY", Args: [][]byte{c.Key, []byte(strconv.FormatInt(c.Delta, 10))}}
}

// --- TTL / PTTL ----------------------------------------------------------

type TTL struct {
	Key    []byte
	Millis bool
}

func (c *TTL) Name() string {
	if c.Millis {
		return "PTTL"
	}
	return "TTL"
}

func parseTTL(args [][]byte) (Command, error) {
	if len(args) != 1 {
		return nil, wrongArity("TTL")
	}
	return &TTL{Key: args[0]}, nil
}
func parsePTTL(args [][]byte) (Command, error) {
	if len(args) != 1 {
		return nil, wrongArity("PTTL")
	}
	return &TTL{Key: args[0], Millis: true}, nil
}

func (c *TTL) ApplyRead(v *dict.View) (resp.Frame, error) {
	e, ok := v.Get(c.Key)
	if !ok {
		return resp.Integer(-2), nil
	}
	if e.ExpiresAt == 0 {
		return resp.Integer(-1), nil
	}
	remainingMs := e.ExpiresAt - v.Now()
	if remainingMs < 0 {
		remainingMs = 0
	}
	if c.Millis {
		return resp.Integer(remainingMs), nil
	}
	return resp.Integer((remainingMs + 999) / 1000), nil
}

// --- EXPIRE family ----------------------------------------------------

type expireUnit uint8

const (
	unitSeconds expireUnit = iota
	unitMillis
)

type ExpireFamily struct {
	name    string
	Key     []byte
	isAt    bool
	unit    expireUnit
	Value   int64 // seconds or ms, relative or absolute depending on isAt
	NX, XX  bool
	GT, LT  bool
	rawArgs [][]byte
}

func (c *ExpireFamily) Name() string { return c.name }

func parseExpireFamily(name string, unit expireUnit, isAt bool) Parser {
	return func(args [][]byte) (Command, error) {
		if len(args) < 2 {
			return nil, wrongArity(name)
		}
		n, err := strconv.ParseInt(string(args[1]), 10, 64)
		if err != nil {
			return nil, parseErrf("ERR value is not an integer or out of range")
		}
		c := &ExpireFamily{name: strings.ToUpper(name), Key: args[0], isAt: isAt, unit: unit, Value: n, rawArgs: args}
		for i := 2; i < len(args); i++ {
			switch strings.ToUpper(string(args[i])) {
			case "NX":
				if c.XX {
					return nil, parseErrf("ERR NX and XX options at the same time are not compatible")
				}
				c.NX = true
			case "XX":
				if c.NX {
					return nil, parseErrf("ERR NX and XX options at the same time are not compatible")
				}
				c.XX = true
			case "GT":
				if c.LT {
					return nil, parseErrf("ERR GT and LT options at the same time are not compatible")
				}
				c.GT = true
			case "LT":
				if c.GT {
					return nil, parseErrf("ERR GT and LT options at the same time are not compatible")
				}
				c.LT = true
			default:
				return nil, parseErrf("ERR Unsupported option %s", string(args[i]))
			}
		}
		return c, nil
	}
}

func (c *ExpireFamily) ApplyWrite(tx *dict.Txn) (resp.Frame, ExpiresStatus, error) {
	e, ok := tx.Get(c.Key)
	if !ok {
		return resp.Integer(0), ExpiresStatus{}, nil
	}

	var newExpiresAt int64
	ms := c.Value
	if c.unit == unitSeconds {
		ms *= 1000
	}
	if c.isAt {
		newExpiresAt = ms
	} else {
		newExpiresAt = tx.Now() + ms
	}

	hasExpiry := e.ExpiresAt != 0
	if c.NX && hasExpiry {
		return resp.Integer(0), ExpiresStatus{}, nil
	}
	if c.XX && !hasExpiry {
		return resp.Integer(0), ExpiresStatus{}, nil
	}
	if c.GT && (!hasExpiry || newExpiresAt <= e.ExpiresAt) {
		return resp.Integer(0), ExpiresStatus{}, nil
	}
	if c.LT && hasExpiry && newExpiresAt >= e.ExpiresAt {
		return resp.Integer(0), ExpiresStatus{}, nil
	}

	prior, _ := tx.SetExpiry(c.Key, newExpiresAt)
	return resp.Integer(1), ExpiresStatus{Kind: ExpiresUpdate, Key: c.Key, Before: prior, New: newExpiresAt}, nil
}

func (c *ExpireFamily) WireArgs() WireCmd { return WireCmd{Name: c.name, Args: c.rawArgs} }
