package command

import (
	"strconv"

	"github.com/edirooss/resp-store/internal/dict"
	"github.com/edirooss/resp-store/internal/resp"
)

func init() {
	register("lpush", parsePush(true, false))
	register("rpush", parsePush(false, false))
	register("lpushx", parsePush(true, true))
	register("rpushx", parsePush(false, true))
	register("lpop", parsePop(true))
	register("rpop", parsePop(false))
	register("llen", parseLLen)
	register("lrange", parseLRange)
}

func dequeOrInsert(tx *dict.Txn, key []byte) (*dict.Deque, error) {
	e, _ := tx.GetOrInsert(key, dict.NewDeque())
	d, ok := e.Value.(*dict.Deque)
	if !ok {
		return nil, dict.ErrWrongType
	}
	return d, nil
}

// --- LPUSH / RPUSH / LPUSHX / RPUSHX ---------------------------------------

type Push struct {
	Key     []byte
	Values  [][]byte
	left    bool
	onlyXX  bool
	rawArgs [][]byte
}

func (c *Push) Name() string {
	switch {
	case c.left && c.onlyXX:
		return "LPUSHX"
	case c.left:
		return "LPUSH"
	case c.onlyXX:
		return "RPUSHX"
	default:
		return "RPUSH"
	}
}

func parsePush(left, onlyXX bool) Parser {
	name := map[[2]bool]string{
		{true, false}: "LPUSH", {false, false}: "RPUSH",
		{true, true}: "LPUSHX", {false, true}: "RPUSHX",
	}[[2]bool{left, onlyXX}]
	return func(args [][]byte) (Command, error) {
		if len(args) < 2 {
			return nil, wrongArity(name)
		}
		return &Push{Key: args[0], Values: args[1:], left: left, onlyXX: onlyXX, rawArgs: args}, nil
	}
}

func (c *Push) ApplyWrite(tx *dict.Txn) (resp.Frame, ExpiresStatus, error) {
	if c.onlyXX {
		if _, ok := tx.Get(c.Key); !ok {
			return resp.Integer(0), ExpiresStatus{}, nil
		}
	}
	d, err := dequeOrInsert(tx, c.Key)
	if err != nil {
		return resp.Frame{}, ExpiresStatus{}, err
	}
	var n int
	if c.left {
		n = d.PushLeft(c.Values...)
	} else {
		n = d.PushRight(c.Values...)
	}
	return resp.Integer(int64(n)), ExpiresStatus{}, nil
}

func (c *Push) WireArgs() WireCmd {
	return WireCmd{Name: c.Name(), Args: c.rawArgs}
}

// --- LPOP / RPOP -------------------------------------------------------

type Pop struct {
	Key      []byte
	Count    int
	HasCount bool
	left     bool
}

func (c *Pop) Name() string {
	if c.left {
		return "LPOP"
	}
	return "RPOP"
}

func parsePop(left bool) Parser {
	name := "RPOP"
	if left {
		name = "LPOP"
	}
	return func(args [][]byte) (Command, error) {
		if len(args) < 1 || len(args) > 2 {
			return nil, wrongArity(name)
		}
		c := &Pop{Key: args[0], left: left}
		if len(args) == 2 {
			n, err := strconv.Atoi(string(args[1]))
			if err != nil || n < 0 {
				return nil, parseErrf("ERR value is out of range, must be positive")
			}
			c.Count, c.HasCount = n, true
		}
		return c, nil
	}
}

func (c *Pop) ApplyWrite(tx *dict.Txn) (resp.Frame, ExpiresStatus, error) {
	e, ok := tx.Get(c.Key)
	if !ok {
		if c.HasCount {
			return resp.ArrayNil(), ExpiresStatus{}, nil
		}
		return resp.BulkNil(), ExpiresStatus{}, nil
	}
	d, ok := e.Value.(*dict.Deque)
	if !ok {
		return resp.Frame{}, ExpiresStatus{}, dict.ErrWrongType
	}
	count := 1
	if c.HasCount {
		count = c.Count
	}
	var popped [][]byte
	if c.left {
		popped = d.PopLeft(count)
	} else {
		popped = d.PopRight(count)
	}
	if d.Len() == 0 {
		tx.Remove(c.Key)
	}
	if c.HasCount {
		items := make([]resp.Frame, len(popped))
		for i, v := range popped {
			items[i] = resp.Bulk(v)
		}
		return resp.Array(items), ExpiresStatus{}, nil
	}
	if len(popped) == 0 {
		return resp.BulkNil(), ExpiresStatus{}, nil
	}
	return resp.Bulk(popped[0]), ExpiresStatus{}, nil
}

func (c *Pop) WireArgs() WireCmd {
	args := [][]byte{c.Key}
	if c.HasCount {
		args = append(args, []byte(strconv.Itoa(c.Count)))
	}
	return WireCmd{Name: c.Name(), Args: args}
}

// --- LLEN ------------------------------------------------------------------

type LLen struct{ Key []byte }

func (*LLen) Name() string { return "LLEN" }

func parseLLen(args [][]byte) (Command, error) {
	if len(args) != 1 {
		return nil, wrongArity("LLEN")
	}
	return &LLen{Key: args[0]}, nil
}

func (c *LLen) ApplyRead(v *dict.View) (resp.Frame, error) {
	e, ok := v.Get(c.Key)
	if !ok {
		return resp.Integer(0), nil
	}
	d, ok := e.Value.(*dict.Deque)
	if !ok {
		return resp.Frame{}, dict.ErrWrongType
	}
	return resp.Integer(int64(d.Len())), nil
}

// --- LRANGE ----------------------------------------------------------------

type LRange struct {
	Key         []byte
	Start, Stop int
}

func (*LRange) Name() string { return "LRANGE" }

func parseLRange(args [][]byte) (Command, error) {
	if len(args) != 3 {
		return nil, wrongArity("LRANGE")
	}
	start, err := strconv.Atoi(string(args[1]))
	if err != nil {
		return nil, parseErrf("ERR value is not an integer or out of range")
	}
	stop, err := strconv.Atoi(string(args[2]))
	if err != nil {
		return nil, parseErrf("ERR value is not an integer or out of range")
	}
	return &LRange{Key: args[0], Start: start, Stop: stop}, nil
}

func (c *LRange) ApplyRead(v *dict.View) (resp.Frame, error) {
	e, ok := v.Get(c.Key)
	if !ok {
		return resp.Array(nil), nil
	}
	d, ok := e.Value.(*dict.Deque)
	if !ok {
		return resp.Frame{}, dict.ErrWrongType
	}
	vals := d.Range(c.Start, c.Stop)
	items := make([]resp.Frame, len(vals))
	for i, v := range vals {
		items[i] = resp.Bulk(v)
	}
	return resp.Array(items), nil
}
