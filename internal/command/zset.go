package command

import (
	"strconv"
	"strings"

	"github.com/edirooss/resp-store/internal/dict"
	"github.com/edirooss/resp-store/internal/resp"
)

func init() {
	register("zadd", parseZAdd)
	register("zrem", parseZRem)
	register("zscore", parseZScore)
	register("zrank", parseZRankFamily(false))
	register("zrevrank", parseZRankFamily(true))
	register("zrange", parseZRange(false))
	register("zrevrange", parseZRange(true))
	register("zrangebyscore", parseZRangeByScore(false))
	register("zrevrangebyscore", parseZRangeByScore(true))
	register("zrangebylex", parseZRangeByLex(false))
	register("zrevrangebylex", parseZRangeByLex(true))
	register("zremrangebyrank", parseZRemRangeByRank)
	register("zremrangebyscore", parseZRemRangeByScore)
	register("zremrangebylex", parseZRemRangeByLex)
}

func zsetOrInsert(tx *dict.Txn, key []byte) (*dict.SortedSet, error) {
	e, _ := tx.GetOrInsert(key, dict.NewSortedSet())
	z, ok := e.Value.(*dict.SortedSet)
	if !ok {
		return nil, dict.ErrWrongType
	}
	return z, nil
}

func zsetRead(v *dict.View, key []byte) (*dict.SortedSet, bool, error) {
	e, ok := v.Get(key)
	if !ok {
		return nil, false, nil
	}
	z, ok := e.Value.(*dict.SortedSet)
	if !ok {
		return nil, false, dict.ErrWrongType
	}
	return z, true, nil
}

func formatScore(f float64) resp.Frame {
	return resp.Bulk([]byte(strconv.FormatFloat(f, 'g', -1, 64)))
}

// --- ZADD ------------------------------------------------------------------

type zPair struct {
	Member string
	Score  float64
}

type ZAdd struct {
	Key     []byte
	Mode    dict.AddMode
	Pairs   []zPair
	rawArgs [][]byte
}

func (*ZAdd) Name() string { return "ZADD" }

func parseZAdd(args [][]byte) (Command, error) {
	if len(args) < 3 {
		return nil, wrongArity("ZADD")
	}
	c := &ZAdd{Key: args[0], rawArgs: args}
	i := 1
loop:
	for i < len(args) {
		switch strings.ToUpper(string(args[i])) {
		case "NX":
			c.Mode.NX = true
			i++
		case "XX":
			c.Mode.XX = true
			i++
		case "GT":
			c.Mode.GT = true
			i++
		case "LT":
			c.Mode.LT = true
			i++
		case "CH":
			c.Mode.CH = true
			i++
		case "INCR":
			c.Mode.Incr = true
			i++
		default:
			break loop
		}
	}
	if c.Mode.NX && (c.Mode.GT || c.Mode.LT) {
		return nil, parseErrf("ERR GT, LT, and/or NX options at the same time are not compatible")
	}
	if c.Mode.GT && c.Mode.LT {
		return nil, parseErrf("ERR GT, LT, and/or NX options at the same time are not compatible")
	}
	rest := args[i:]
	if len(rest) == 0 || len(rest)%2 != 0 {
		return nil, wrongArity("ZADD")
	}
	if c.Mode.Incr && len(rest) != 2 {
		return nil, parseErrf("ERR INCR option supports a single increment-element pair")
	}
	for j := 0; j < len(rest); j += 2 {
		score, err := strconv.ParseFloat(string(rest[j]), 64)
		if err != nil {
			return nil, parseErrf("ERR value is not a valid float")
		}
		c.Pairs = append(c.Pairs, zPair{Member: string(rest[j+1]), Score: score})
	}
	return c, nil
}

func (c *ZAdd) ApplyWrite(tx *dict.Txn) (resp.Frame, ExpiresStatus, error) {
	z, err := zsetOrInsert(tx, c.Key)
	if err != nil {
		return resp.Frame{}, ExpiresStatus{}, err
	}
	added, changed := 0, 0
	var lastResult dict.AddResult
	for _, p := range c.Pairs {
		res := z.Add(c.Mode, p.Member, p.Score)
		added += res.Added
		changed += res.Changed
		lastResult = res
	}
	if z.Len() == 0 {
		tx.Remove(c.Key)
	}
	if c.Mode.Incr {
		if lastResult.IncrSkip {
			return resp.BulkNil(), ExpiresStatus{}, nil
		}
		return formatScore(lastResult.IncrResult), ExpiresStatus{}, nil
	}
	if c.Mode.CH {
		return resp.Integer(int64(changed)), ExpiresStatus{}, nil
	}
	return resp.Integer(int64(added)), ExpiresStatus{}, nil
}

func (c *ZAdd) WireArgs() WireCmd { return WireCmd{Name: "ZADD", Args: c.rawArgs} }

// --- ZREM ------------------------------------------------------------------

type ZRem struct {
	Key     []byte
	Members [][]byte
}

func (*ZRem) Name() string { return "ZREM" }

func parseZRem(args [][]byte) (Command, error) {
	if len(args) < 2 {
		return nil, wrongArity("ZREM")
	}
	return &ZRem{Key: args[0], Members: args[1:]}, nil
}

func (c *ZRem) ApplyWrite(tx *dict.Txn) (resp.Frame, ExpiresStatus, error) {
	e, ok := tx.Get(c.Key)
	if !ok {
		return resp.Integer(0), ExpiresStatus{}, nil
	}
	z, ok := e.Value.(*dict.SortedSet)
	if !ok {
		return resp.Frame{}, ExpiresStatus{}, dict.ErrWrongType
	}
	members := make([]string, len(c.Members))
	for i, m := range c.Members {
		members[i] = string(m)
	}
	n := z.Remove(members...)
	if z.Len() == 0 {
		tx.Remove(c.Key)
	}
	return resp.Integer(int64(n)), ExpiresStatus{}, nil
}

func (c *ZRem) WireArgs() WireCmd {
	return WireCmd{Name: "ZREM", Args: append([][]byte{c.Key}, c.Members...)}
}

// --- ZSCORE ------------------------------------------------------------

type ZScore struct{ Key, Member []byte }

func (*ZScore) Name() string { return "ZSCORE" }

func parseZScore(args [][]byte) (Command, error) {
	if len(args) != 2 {
		return nil, wrongArity("ZSCORE")
	}
	return &ZScore{Key: args[0], Member: args[1]}, nil
}

func (c *ZScore) ApplyRead(v *dict.View) (resp.Frame, error) {
	z, ok, err := zsetRead(v, c.Key)
	if err != nil {
		return resp.Frame{}, err
	}
	if !ok {
		return resp.BulkNil(), nil
	}
	score, ok := z.Score(string(c.Member))
	if !ok {
		return resp.BulkNil(), nil
	}
	return formatScore(score), nil
}

// --- ZRANK / ZREVRANK ----------------------------------------------------

type ZRank struct {
	Key, Member []byte
	rev         bool
	withScore   bool
}

func (c *ZRank) Name() string {
	if c.rev {
		return "ZREVRANK"
	}
	return "ZRANK"
}

func parseZRankFamily(rev bool) Parser {
	name := "ZRANK"
	if rev {
		name = "ZREVRANK"
	}
	return func(args [][]byte) (Command, error) {
		if len(args) < 2 || len(args) > 3 {
			return nil, wrongArity(name)
		}
		c := &ZRank{Key: args[0], Member: args[1], rev: rev}
		if len(args) == 3 {
			if strings.ToUpper(string(args[2])) != "WITHSCORE" {
				return nil, parseErrf("ERR syntax error")
			}
			c.withScore = true
		}
		return c, nil
	}
}

func (c *ZRank) ApplyRead(v *dict.View) (resp.Frame, error) {
	z, ok, err := zsetRead(v, c.Key)
	if err != nil {
		return resp.Frame{}, err
	}
	if !ok {
		if c.withScore {
			return resp.ArrayNil(), nil
		}
		return resp.BulkNil(), nil
	}
	rank, ok := z.Rank(string(c.Member), c.rev)
	if !ok {
		if c.withScore {
			return resp.ArrayNil(), nil
		}
		return resp.BulkNil(), nil
	}
	if !c.withScore {
		return resp.Integer(int64(rank)), nil
	}
	score, _ := z.Score(string(c.Member))
	return resp.Array([]resp.Frame{resp.Integer(int64(rank)), formatScore(score)}), nil
}

// --- ZRANGE / ZREVRANGE (by rank, with BYSCORE/BYLEX/REV modifiers) -----

type rangeMode uint8

const (
	rangeByRank rangeMode = iota
	rangeByScore
	rangeByLex
)

type ZRange struct {
	Key         []byte
	Min, Max    string // raw tokens: rank ints, score floats/inf, or lex bounds
	Mode        rangeMode
	Rev         bool
	WithScores  bool
	HasLimit    bool
	Offset, Cnt int
}

func (c *ZRange) Name() string {
	if c.Rev {
		return "ZREVRANGE"
	}
	return "ZRANGE"
}

func parseZRange(legacyRev bool) Parser {
	name := "ZRANGE"
	if legacyRev {
		name = "ZREVRANGE"
	}
	return func(args [][]byte) (Command, error) {
		if len(args) < 3 {
			return nil, wrongArity(name)
		}
		c := &ZRange{Key: args[0], Min: string(args[1]), Max: string(args[2]), Rev: legacyRev}
		for i := 3; i < len(args); i++ {
			switch strings.ToUpper(string(args[i])) {
			case "BYSCORE":
				c.Mode = rangeByScore
			case "BYLEX":
				c.Mode = rangeByLex
			case "REV":
				c.Rev = true
			case "WITHSCORES":
				c.WithScores = true
			case "LIMIT":
				if i+2 >= len(args) {
					return nil, parseErrf("ERR syntax error")
				}
				off, err1 := strconv.Atoi(string(args[i+1]))
				cnt, err2 := strconv.Atoi(string(args[i+2]))
				if err1 != nil || err2 != nil {
					return nil, parseErrf("ERR value is not an integer or out of range")
				}
				c.HasLimit, c.Offset, c.Cnt = true, off, cnt
				i += 2
			default:
				return nil, parseErrf("ERR syntax error")
			}
		}
		return c, nil
	}
}

func parseScoreToken(s string) (val float64, excl bool, err error) {
	if s == "+inf" {
		return dict.PositiveInfinityScore, false, nil
	}
	if s == "-inf" {
		return dict.NegativeInfinityScore, false, nil
	}
	if strings.HasPrefix(s, "(") {
		v, e := strconv.ParseFloat(s[1:], 64)
		return v, true, e
	}
	v, e := strconv.ParseFloat(s, 64)
	return v, false, e
}

func parseLexToken(s string) (dict.LexBound, error) {
	switch {
	case s == "-":
		return dict.LexBound{Unbounded: true}, nil
	case s == "+":
		return dict.LexBound{Unbounded: true, PositiveInfinity: true}, nil
	case strings.HasPrefix(s, "["):
		return dict.LexBound{Inclusive: true, Value: s[1:]}, nil
	case strings.HasPrefix(s, "("):
		return dict.LexBound{Value: s[1:]}, nil
	default:
		return dict.LexBound{}, parseErrf("ERR min or max not valid string range item")
	}
}

func (c *ZRange) limit() dict.Limit {
	if !c.HasLimit {
		return dict.Limit{Count: -1}
	}
	return dict.Limit{Offset: c.Offset, Count: c.Cnt}
}

func (c *ZRange) ApplyRead(v *dict.View) (resp.Frame, error) {
	z, ok, err := zsetRead(v, c.Key)
	if err != nil {
		return resp.Frame{}, err
	}
	if !ok {
		return resp.Array(nil), nil
	}
	var members []dict.Member
	switch c.Mode {
	case rangeByRank:
		start, err1 := strconv.Atoi(c.Min)
		stop, err2 := strconv.Atoi(c.Max)
		if err1 != nil || err2 != nil {
			return resp.Frame{}, parseErrf("ERR value is not an integer or out of range")
		}
		members = z.RangeByRank(start, stop, c.Rev)
	case rangeByScore:
		minV, minExcl, e1 := parseScoreToken(c.Min)
		maxV, maxExcl, e2 := parseScoreToken(c.Max)
		if e1 != nil || e2 != nil {
			return resp.Frame{}, parseErrf("ERR min or max is not a float")
		}
		members = z.RangeByScore(minV, maxV, minExcl, maxExcl, c.Rev, c.limit())
	case rangeByLex:
		minB, e1 := parseLexToken(c.Min)
		maxB, e2 := parseLexToken(c.Max)
		if e1 != nil || e2 != nil {
			return resp.Frame{}, e1
		}
		members = z.RangeByLex(minB, maxB, c.Rev, c.limit())
	}
	return renderZMembers(members, c.WithScores), nil
}

func renderZMembers(members []dict.Member, withScores bool) resp.Frame {
	var items []resp.Frame
	for _, m := range members {
		items = append(items, resp.Bulk([]byte(m.Member)))
		if withScores {
			items = append(items, formatScore(m.Score))
		}
	}
	return resp.Array(items)
}

// --- ZRANGEBYSCORE / ZREVRANGEBYSCORE (legacy forms) --------------------

func parseZRangeByScore(rev bool) Parser {
	name := "ZRANGEBYSCORE"
	if rev {
		name = "ZREVRANGEBYSCORE"
	}
	return func(args [][]byte) (Command, error) {
		if len(args) < 3 {
			return nil, wrongArity(name)
		}
		min, max := args[1], args[2]
		if rev {
			min, max = args[2], args[1]
		}
		rest := [][]byte{args[0], min, max}
		rest = append(rest, []byte("BYSCORE"))
		if rev {
			rest = append(rest, []byte("REV"))
		}
		rest = append(rest, args[3:]...)
		return parseZRange(false)(rest)
	}
}

// --- ZRANGEBYLEX / ZREVRANGEBYLEX (legacy forms) ------------------------

func parseZRangeByLex(rev bool) Parser {
	name := "ZRANGEBYLEX"
	if rev {
		name = "ZREVRANGEBYLEX"
	}
	return func(args [][]byte) (Command, error) {
		if len(args) < 3 {
			return nil, wrongArity(name)
		}
		min, max := args[1], args[2]
		if rev {
			min, max = args[2], args[1]
		}
		rest := [][]byte{args[0], min, max}
		rest = append(rest, []byte("BYLEX"))
		if rev {
			rest = append(rest, []byte("REV"))
		}
		rest = append(rest, args[3:]...)
		return parseZRange(false)(rest)
	}
}

// --- ZREMRANGEBYRANK / BYSCORE / BYLEX ------------------------------------

type ZRemRange struct {
	Key      []byte
	Min, Max string
	Mode     rangeMode
}

func (c *ZRemRange) Name() string {
	switch c.Mode {
	case rangeByScore:
		return "ZREMRANGEBYSCORE"
	case rangeByLex:
		return "ZREMRANGEBYLEX"
	default:
		return "ZREMRANGEBYRANK"
	}
}

func parseZRemRangeByRank(args [][]byte) (Command, error) {
	if len(args) != 3 {
		return nil, wrongArity("ZREMRANGEBYRANK")
	}
	return &ZRemRange{Key: args[0], Min: string(args[1]), Max: string(args[2]), Mode: rangeByRank}, nil
}

func parseZRemRangeByScore(args [][]byte) (Command, error) {
	if len(args) != 3 {
		return nil, wrongArity("ZREMRANGEBYSCORE")
	}
	return &ZRemRange{Key: args[0], Min: string(args[1]), Max: string(args[2]), Mode: rangeByScore}, nil
}

func parseZRemRangeByLex(args [][]byte) (Command, error) {
	if len(args) != 3 {
		return nil, wrongArity("ZREMRANGEBYLEX")
	}
	return &ZRemRange{Key: args[0], Min: string(args[1]), Max: string(args[2]), Mode: rangeByLex}, nil
}

func (c *ZRemRange) ApplyWrite(tx *dict.Txn) (resp.Frame, ExpiresStatus, error) {
	e, ok := tx.Get(c.Key)
	if !ok {
		return resp.Integer(0), ExpiresStatus{}, nil
	}
	z, ok := e.Value.(*dict.SortedSet)
	if !ok {
		return resp.Frame{}, ExpiresStatus{}, dict.ErrWrongType
	}
	var victims []dict.Member
	switch c.Mode {
	case rangeByRank:
		start, err1 := strconv.Atoi(c.Min)
		stop, err2 := strconv.Atoi(c.Max)
		if err1 != nil || err2 != nil {
			return resp.Frame{}, ExpiresStatus{}, parseErrf("ERR value is not an integer or out of range")
		}
		victims = z.RangeByRank(start, stop, false)
	case rangeByScore:
		minV, minExcl, e1 := parseScoreToken(c.Min)
		maxV, maxExcl, e2 := parseScoreToken(c.Max)
		if e1 != nil || e2 != nil {
			return resp.Frame{}, ExpiresStatus{}, parseErrf("ERR min or max is not a float")
		}
		victims = z.RangeByScore(minV, maxV, minExcl, maxExcl, false, dict.Limit{Count: -1})
	case rangeByLex:
		minB, e1 := parseLexToken(c.Min)
		maxB, e2 := parseLexToken(c.Max)
		if e1 != nil || e2 != nil {
			return resp.Frame{}, ExpiresStatus{}, e1
		}
		victims = z.RangeByLex(minB, maxB, false, dict.Limit{Count: -1})
	}
	names := make([]string, len(victims))
	for i, m := range victims {
		names[i] = m.Member
	}
	n := z.Remove(names...)
	if z.Len() == 0 {
		tx.Remove(c.Key)
	}
	return resp.Integer(int64(n)), ExpiresStatus{}, nil
}

func (c *ZRemRange) WireArgs() WireCmd {
	return WireCmd{Name: c.Name(), Args: [][]byte{c.Key, []byte(c.Min), []byte(c.Max)}}
}
