package ast

import "encoding/json"

// Snapshot is a flattened, serialization-friendly view of a Grammar, used
// by the `dump` subcommand (spec.md §6.2) to emit structured data either
// before or after the modifier pipeline has run. It round-trips: dumping a
// Grammar and loading a Snapshot back into one yields an equal tree
// (spec.md §8, "Round-trip / idempotence").
type Snapshot struct {
	Rules     []RuleSnap `json:"rules"`
	EntryId   string     `json:"entry_id,omitempty"`
	MetaRules []MetaSnap `json:"metarules,omitempty"`
}

type RuleSnap struct {
	Id       string     `json:"id"`
	Expr     ExprSnap   `json:"expr"`
	Entry    bool       `json:"entry,omitempty"`
	Ignore   bool       `json:"ignore,omitempty"`
	Head     bool       `json:"head,omitempty"`
	Nullable bool       `json:"nullable,omitempty"`
	LeftRec  []SCCSnap  `json:"leftrec,omitempty"`
}

type SCCSnap struct {
	Head    string   `json:"head"`
	Members []string `json:"members"`
}

type MetaSnap struct {
	Id   string `json:"id,omitempty"`
	Body string `json:"body"`
}

type ExprSnap struct {
	Alts []AltSnap `json:"alts"`
}

type AltSnap struct {
	Items    []NamedItemSnap `json:"items"`
	MetaRule *MetaSnap       `json:"metarule,omitempty"`
	Nullable bool            `json:"nullable,omitempty"`
	Grower   bool            `json:"grower,omitempty"`
}

type NamedItemSnap struct {
	MetaName string   `json:"name,omitempty"`
	Item     ItemSnap `json:"item"`
}

type ItemSnap struct {
	Kind      string     `json:"kind"`
	Id        string     `json:"id,omitempty"`
	String    string     `json:"string,omitempty"`
	Char      rune       `json:"char,omitempty"`
	Ranges    []RangeSnap `json:"ranges,omitempty"`
	Sub       *ItemSnap  `json:"sub,omitempty"`
	RepFirst  int        `json:"rep_first,omitempty"`
	RepLast   *int       `json:"rep_last,omitempty"`
	Group     *ExprSnap  `json:"group,omitempty"`
}

type RangeSnap struct {
	First rune  `json:"first"`
	Last  *rune `json:"last,omitempty"`
}

// ExprKey returns a canonical structural encoding of e, suitable as a map
// key for passes that need to recognize identical nested Exprs (e.g.
// ReplaceNestedExprs collapsing duplicate parenthesized groups within the
// same parent rule to a single generated rule). Two Exprs with the same
// shape, independent of ParseInfo, produce the same key.
func ExprKey(e *Expr) string {
	b, err := json.Marshal(exprToSnap(e))
	if err != nil {
		return ""
	}
	return string(b)
}

// ToSnapshot flattens g into its serializable form.
func ToSnapshot(g *Grammar) Snapshot {
	snap := Snapshot{Rules: make([]RuleSnap, 0, len(g.Rules))}
	if g.Entry != nil {
		snap.EntryId = g.Entry.Id.Name
	}
	for _, mr := range g.MetaRules {
		snap.MetaRules = append(snap.MetaRules, MetaSnap{Id: mr.Id.Name, Body: mr.Body})
	}
	for _, r := range g.Rules {
		rs := RuleSnap{
			Id:       r.Id.Name,
			Entry:    r.Entry,
			Ignore:   r.Ignore,
			Head:     r.Head,
			Nullable: r.Nullable,
		}
		if r.Expr != nil {
			rs.Expr = exprToSnap(r.Expr)
		}
		if r.LeftRec != nil {
			for _, scc := range r.LeftRec.Chains {
				s := SCCSnap{}
				if scc.Head != nil {
					s.Head = scc.Head.Id.Name
				}
				for _, m := range scc.Members {
					s.Members = append(s.Members, m.Id.Name)
				}
				rs.LeftRec = append(rs.LeftRec, s)
			}
		}
		snap.Rules = append(snap.Rules, rs)
	}
	return snap
}

func exprToSnap(e *Expr) ExprSnap {
	es := ExprSnap{}
	for _, a := range e.Alts {
		as := AltSnap{Nullable: a.Nullable, Grower: a.Grower}
		if a.MetaRule != nil {
			as.MetaRule = &MetaSnap{Id: a.MetaRule.Id.Name, Body: a.MetaRule.Body}
		}
		for _, ni := range a.Items {
			as.Items = append(as.Items, NamedItemSnap{
				MetaName: ni.MetaName.Name,
				Item:     itemToSnap(ni.Item),
			})
		}
		es.Alts = append(es.Alts, as)
	}
	return es
}

func itemToSnap(it *Item) ItemSnap {
	is := ItemSnap{Kind: it.Kind.String()}
	switch it.Kind {
	case KindId:
		is.Id = it.IdRef.Name
	case KindString:
		is.String = it.StringVal
	case KindChar:
		is.Char = rune(it.CharVal)
	case KindClass:
		for _, r := range it.ClassVal {
			rs := RangeSnap{First: rune(r.First)}
			if r.Last != nil {
				last := rune(*r.Last)
				rs.Last = &last
			}
			is.Ranges = append(is.Ranges, rs)
		}
	case KindRepetition:
		sub := itemToSnap(it.Sub)
		is.Sub = &sub
		is.RepFirst = it.RepFirst
		is.RepLast = it.RepLast
	case KindZeroOrOne, KindZeroOrMore, KindOneOrMore, KindAnd, KindNot:
		sub := itemToSnap(it.Sub)
		is.Sub = &sub
	case KindGroup:
		group := exprToSnap(it.Group)
		is.Group = &group
	}
	return is
}

// FromSnapshot rebuilds a Grammar from a previously dumped Snapshot.
func FromSnapshot(snap Snapshot) *Grammar {
	g := &Grammar{}
	for _, mr := range snap.MetaRules {
		g.MetaRules = append(g.MetaRules, &MetaRule{Id: Id{Name: mr.Id}, Body: mr.Body})
	}
	for _, rs := range snap.Rules {
		r := &Rule{
			Id:       Id{Name: rs.Id},
			Entry:    rs.Entry,
			Ignore:   rs.Ignore,
			Head:     rs.Head,
			Nullable: rs.Nullable,
			Expr:     exprFromSnap(rs.Expr),
		}
		g.AddRule(r)
	}
	if snap.EntryId != "" {
		g.Entry = g.RuleById(snap.EntryId)
	}
	// LeftRec chains reference sibling Rules by Id; resolve in a second
	// pass now that every Rule exists.
	for i, rs := range snap.Rules {
		if len(rs.LeftRec) == 0 {
			continue
		}
		r := g.Rules[i]
		r.LeftRec = &LeftRecInfo{}
		for _, s := range rs.LeftRec {
			scc := &SCC{Head: g.RuleById(s.Head)}
			for _, m := range s.Members {
				if mr := g.RuleById(m); mr != nil {
					scc.Members = append(scc.Members, mr)
				}
			}
			r.LeftRec.Chains = append(r.LeftRec.Chains, scc)
		}
	}
	return g
}

func exprFromSnap(es ExprSnap) *Expr {
	e := &Expr{}
	for _, as := range es.Alts {
		a := &Alt{Nullable: as.Nullable, Grower: as.Grower}
		if as.MetaRule != nil {
			a.MetaRule = &MetaRule{Id: Id{Name: as.MetaRule.Id}, Body: as.MetaRule.Body}
		}
		for _, nis := range as.Items {
			a.Items = append(a.Items, &NamedItem{
				MetaName: Id{Name: nis.MetaName},
				Item:     itemFromSnap(nis.Item),
			})
		}
		e.Alts = append(e.Alts, a)
	}
	return e
}

func itemFromSnap(is ItemSnap) *Item {
	switch is.Kind {
	case KindId.String():
		return NewId(Id{Name: is.Id}, nil)
	case KindString.String():
		return NewString(is.String, nil)
	case KindChar.String():
		return NewChar(Char(is.Char), nil)
	case KindAnyChar.String():
		return NewAnyChar(nil)
	case KindClass.String():
		var ranges []Range
		for _, rs := range is.Ranges {
			r := Range{First: Char(rs.First)}
			if rs.Last != nil {
				last := Char(*rs.Last)
				r.Last = &last
			}
			ranges = append(ranges, r)
		}
		return NewClass(ranges, nil)
	case KindZeroOrOne.String():
		return NewUnary(KindZeroOrOne, itemFromSnap(*is.Sub), nil)
	case KindZeroOrMore.String():
		return NewUnary(KindZeroOrMore, itemFromSnap(*is.Sub), nil)
	case KindOneOrMore.String():
		return NewUnary(KindOneOrMore, itemFromSnap(*is.Sub), nil)
	case KindAnd.String():
		return NewUnary(KindAnd, itemFromSnap(*is.Sub), nil)
	case KindNot.String():
		return NewUnary(KindNot, itemFromSnap(*is.Sub), nil)
	case KindRepetition.String():
		return NewRepetition(itemFromSnap(*is.Sub), is.RepFirst, is.RepLast, nil)
	case KindGroup.String():
		return NewGroup(exprFromSnap(*is.Group), nil)
	default:
		return &Item{}
	}
}

// MarshalJSON-compatible helpers used directly by cmd/polygen's `dump
// --format=json`.
func (s Snapshot) ToJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// MarshalBinary implements encoding.BinaryMarshaler so that
// github.com/dekarrin/rezi's EncBinary/DecBinary convenience wrappers
// (as used by the teacher in server/dao/sqlite/sqlite.go) can frame a
// Snapshot inside a larger REZI-encoded document for `dump --format=rezi`.
// The payload itself is the same JSON used by ToJSON; REZI contributes the
// length-prefixed binary framing around it rather than a second bespoke
// encoding.
func (s Snapshot) MarshalBinary() ([]byte, error) {
	return s.ToJSON()
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler, the counterpart to
// MarshalBinary.
func (s *Snapshot) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, s)
}
