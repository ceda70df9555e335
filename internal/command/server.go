package command

import (
	"strconv"
	"strings"

	"github.com/edirooss/resp-store/internal/dict"
	"github.com/edirooss/resp-store/internal/resp"
)

func init() {
	register("dump", parseDump)
	register("restore", parseRestore)
	register("flushall", parseFlushAll)
	register("debug", parseDebug)
	register("object", parseObject)
	register("config", parseConfig)
	register("info", parseInfo)
}

// --- DUMP ------------------------------------------------------------------

type Dump struct{ Key []byte }

func (*Dump) Name() string { return "DUMP" }

func parseDump(args [][]byte) (Command, error) {
	if len(args) != 1 {
		return nil, wrongArity("DUMP")
	}
	return &Dump{Key: args[0]}, nil
}

func (c *Dump) ApplyRead(v *dict.View) (resp.Frame, error) {
	e, ok := v.Get(c.Key)
	if !ok {
		return resp.BulkNil(), nil
	}
	return resp.Bulk(dict.EncodeEntry(*e)), nil
}

// --- RESTORE ---------------------------------------------------------------

type Restore struct {
	Key       []byte
	TTLMillis int64
	Payload   []byte
	Replace   bool
	AbsTTL    bool
	IdleTime  int64
	HasIdle   bool
	Freq      uint8
	HasFreq   bool
	rawArgs   [][]byte
}

func (*Restore) Name() string { return "RESTORE" }

func parseRestore(args [][]byte) (Command, error) {
	if len(args) < 3 {
		return nil, wrongArity("RESTORE")
	}
	ttl, err := strconv.ParseInt(string(args[1]), 10, 64)
	if err != nil || ttl < 0 {
		return nil, parseErrf("ERR Invalid TTL value, must be >= 0")
	}
	c := &Restore{Key: args[0], TTLMillis: ttl, Payload: args[2], rawArgs: args}
	i := 3
	for i < len(args) {
		switch strings.ToUpper(string(args[i])) {
		case "REPLACE":
			c.Replace = true
			i++
		case "ABSTTL":
			c.AbsTTL = true
			i++
		case "IDLETIME":
			if i+1 >= len(args) {
				return nil, parseErrf("ERR syntax error")
			}
			n, err := strconv.ParseInt(string(args[i+1]), 10, 64)
			if err != nil || n < 0 {
				return nil, parseErrf("ERR Invalid IDLETIME value, must be >= 0")
			}
			c.IdleTime, c.HasIdle = n, true
			i += 2
		case "FREQ":
			if i+1 >= len(args) {
				return nil, parseErrf("ERR syntax error")
			}
			n, err := strconv.ParseInt(string(args[i+1]), 10, 64)
			if err != nil || n < 0 || n > 255 {
				return nil, parseErrf("ERR Invalid FREQ value, must be >= 0 and <= 255")
			}
			c.Freq, c.HasFreq = uint8(n), true
			i += 2
		default:
			return nil, parseErrf("ERR syntax error")
		}
	}
	if c.HasIdle && c.HasFreq {
		return nil, parseErrf("ERR syntax error")
	}
	return c, nil
}

func (c *Restore) ApplyWrite(tx *dict.Txn) (resp.Frame, ExpiresStatus, error) {
	if _, exists := tx.Get(c.Key); exists && !c.Replace {
		return resp.Frame{}, ExpiresStatus{}, ErrBusy
	}
	e, err := dict.DecodeEntry(c.Payload)
	if err != nil {
		return resp.Frame{}, ExpiresStatus{}, parseErrf("ERR Bad data format")
	}
	var priorExpiresAt int64
	if prior, ok := tx.Get(c.Key); ok {
		priorExpiresAt = prior.ExpiresAt
	}
	switch {
	case c.TTLMillis == 0:
		e.ExpiresAt = 0
	case c.AbsTTL:
		e.ExpiresAt = c.TTLMillis
	default:
		e.ExpiresAt = tx.Now() + c.TTLMillis
	}
	if c.HasIdle {
		e.LastVisitMillis = tx.Now() - c.IdleTime*1000
	}
	if c.HasFreq {
		e.Freq = c.Freq
	}
	tx.Insert(c.Key, e)
	status := ExpiresStatus{}
	if e.ExpiresAt != priorExpiresAt {
		status = ExpiresStatus{Kind: ExpiresUpdate, Key: c.Key, Before: priorExpiresAt, New: e.ExpiresAt}
	}
	return resp.OKFrame, status, nil
}

func (c *Restore) WireArgs() WireCmd { return WireCmd{Name: "RESTORE", Args: c.rawArgs} }

// --- FLUSHALL --------------------------------------------------------------

type FlushAll struct{ rawArgs [][]byte }

func (*FlushAll) Name() string { return "FLUSHALL" }

func parseFlushAll(args [][]byte) (Command, error) {
	for _, a := range args {
		switch strings.ToUpper(string(a)) {
		case "SYNC", "ASYNC":
		default:
			return nil, parseErrf("ERR syntax error")
		}
	}
	return &FlushAll{rawArgs: args}, nil
}

func (c *FlushAll) ApplyWrite(tx *dict.Txn) (resp.Frame, ExpiresStatus, error) {
	tx.FlushAll()
	return resp.OKFrame, ExpiresStatus{}, nil
}

func (c *FlushAll) WireArgs() WireCmd { return WireCmd{Name: "FLUSHALL", Args: c.rawArgs} }

// --- DEBUG OBJECT ------------------------------------------------------

type DebugObject struct{ Key []byte }

func (*DebugObject) Name() string { return "DEBUG" }

func parseDebug(args [][]byte) (Command, error) {
	if len(args) != 2 || strings.ToUpper(string(args[0])) != "OBJECT" {
		return nil, parseErrf("ERR DEBUG subcommand not supported")
	}
	return &DebugObject{Key: args[1]}, nil
}

func (c *DebugObject) ApplyRead(v *dict.View) (resp.Frame, error) {
	e, ok := v.Get(c.Key)
	if !ok {
		return resp.Err("ERR no such key"), nil
	}
	encLen := len(dict.EncodeValue(e.Value))
	s := strings.Builder{}
	s.WriteString("Value at:0x0 refcount:1 encoding:")
	s.WriteString(objectEncoding(e.Value))
	s.WriteString(" serializedlength:")
	s.WriteString(strconv.Itoa(encLen))
	s.WriteString(" lru:")
	s.WriteString(strconv.FormatInt(e.LastVisitMillis, 10))
	s.WriteString(" lru_seconds_idle:")
	s.WriteString(strconv.FormatInt((v.Now()-e.LastVisitMillis)/1000, 10))
	return resp.Simple(s.String()), nil
}

func objectEncoding(val dict.Value) string {
	switch val.(type) {
	case dict.Int:
		return "int"
	case dict.Str, dict.Bytes:
		return "raw"
	case *dict.Deque:
		return "quicklist"
	case *dict.Kvp:
		return "hashtable"
	case *dict.Set:
		return "hashtable"
	case *dict.SortedSet:
		return "skiplist"
	default:
		return "unknown"
	}
}

// --- OBJECT IDLETIME|FREQ ------------------------------------------------

type Object struct {
	Key     []byte
	freq    bool
	idle    bool
	unknown bool
	sub     string
}

func (*Object) Name() string { return "OBJECT" }

func parseObject(args [][]byte) (Command, error) {
	if len(args) != 2 {
		return nil, parseErrf("ERR wrong number of arguments for 'object' command")
	}
	sub := strings.ToUpper(string(args[0]))
	c := &Object{Key: args[1], sub: sub}
	switch sub {
	case "IDLETIME":
		c.idle = true
	case "FREQ":
		c.freq = true
	default:
		c.unknown = true
	}
	return c, nil
}

func (c *Object) ApplyRead(v *dict.View) (resp.Frame, error) {
	if c.unknown {
		return resp.Err("ERR Unknown subcommand or wrong number of arguments for '" + c.sub + "'"), nil
	}
	e, ok := v.Get(c.Key)
	if !ok {
		return resp.Err("ERR no such key"), nil
	}
	if c.idle {
		idle := (v.Now() - e.LastVisitMillis) / 1000
		if idle < 0 {
			idle = 0
		}
		return resp.Integer(idle), nil
	}
	return resp.Integer(int64(e.Freq)), nil
}

// --- CONFIG (stub) ---------------------------------------------------------

type Config struct{ rawArgs [][]byte }

func (*Config) Name() string { return "CONFIG" }

func parseConfig(args [][]byte) (Command, error) {
	if len(args) < 1 {
		return nil, wrongArity("CONFIG")
	}
	return &Config{rawArgs: args}, nil
}

func (c *Config) ApplyRead(v *dict.View) (resp.Frame, error) {
	if strings.ToUpper(string(c.rawArgs[0])) == "GET" {
		return resp.Array(nil), nil
	}
	return resp.OKFrame, nil
}

// --- INFO (fixed payload) -------------------------------------------------

type Info struct{}

func (*Info) Name() string { return "INFO" }

func parseInfo(args [][]byte) (Command, error) { return &Info{}, nil }

const infoPayload = "# Server\r\n" +
	"redis_version:7.4.0\r\n" +
	"redis_mode:standalone\r\n" +
	"run_id:resp-store\r\n" +
	"tcp_port:6379\r\n"

func (c *Info) ApplyRead(v *dict.View) (resp.Frame, error) {
	return resp.Bulk([]byte(infoPayload)), nil
}
