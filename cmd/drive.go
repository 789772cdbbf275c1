package cmd

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/clems4ever/selectorvm/selectorvm"
)

// namespaceStack tracks which foreign-content namespace (if any) the
// tokenizer is currently inside. This bookkeeping lives in cmd/, not in
// selectorvm, because the VM itself is only ever told the namespace of
// the element currently being opened (spec.md §3 "Namespace") — deciding
// that namespace from a raw tag stream is the tokenizer's job, and is
// explicitly out of the VM's scope (spec.md §1).
type namespaceStack struct {
	frames []selectorvm.Namespace
}

func (s *namespaceStack) current() selectorvm.Namespace {
	if len(s.frames) == 0 {
		return selectorvm.HTML
	}
	return s.frames[len(s.frames)-1]
}

func (s *namespaceStack) push(ns selectorvm.Namespace) {
	s.frames = append(s.frames, ns)
}

func (s *namespaceStack) pop(name selectorvm.LocalName) {
	if len(s.frames) > 0 && (name == "svg" || name == "math") {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

func namespaceFor(parent selectorvm.Namespace, name selectorvm.LocalName) selectorvm.Namespace {
	switch name {
	case "svg":
		return selectorvm.SVG
	case "math":
		return selectorvm.MathML
	default:
		return parent
	}
}

// buildAttrBuffer drains the tokenizer's pending attributes for the
// current start tag into a selectorvm.AttrBuffer. The buffer's Input is a
// synthetic byte run this function builds, not the document's original
// bytes — cmd/ does not have access to the tokenizer's unread raw
// buffer — but the spans it produces answer exactly the same predicates
// the real start-tag bytes would.
func buildAttrBuffer(z *html.Tokenizer, encoding string) selectorvm.AttrBuffer {
	var buf bytes.Buffer
	var spans []selectorvm.AttrSpan

	for {
		key, val, more := z.TagAttr()
		nameStart := buf.Len()
		buf.Write(key)
		nameEnd := buf.Len()

		valStart := buf.Len()
		buf.Write(val)
		valEnd := buf.Len()

		spans = append(spans, selectorvm.AttrSpan{
			NameStart: nameStart, NameEnd: nameEnd,
			ValueStart: valStart, ValueEnd: valEnd,
		})

		if !more {
			break
		}
	}

	return selectorvm.AttrBuffer{Input: buf.Bytes(), Attrs: spans, Encoding: encoding}
}

// driveOptions configures RunSelectors.
type driveOptions struct {
	encoding  string
	onMatch   func(payload string, withContent bool)
	onUnmatch func(payload string)
}

// RunSelectors tokenizes r with a real streaming HTML tokenizer
// (golang.org/x/net/html) and drives vm's start/end-tag protocol exactly
// as a rewriting pipeline would: attributes are only scanned when the VM
// returns an AttributeRequest (spec.md §4.4-§4.5, §6).
func RunSelectors(r io.Reader, vm *selectorvm.VM[string], opts driveOptions) error {
	z := html.NewTokenizer(r)
	var ns namespaceStack

	for {
		tt := z.Next()

		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return err
			}
			return nil

		case html.StartTagToken, html.SelfClosingTagToken:
			nameBytes, hasAttr := z.TagName()
			name := selectorvm.LocalName(string(nameBytes))
			elemNS := namespaceFor(ns.current(), name)

			req := vm.ExecForStartTag(name, elemNS, func(info selectorvm.MatchInfo[string]) {
				if opts.onMatch != nil {
					opts.onMatch(info.Payload, info.WithContent)
				}
			})

			if req != nil {
				var buf selectorvm.AttrBuffer
				if hasAttr {
					buf = buildAttrBuffer(z, opts.encoding)
				} else {
					buf = selectorvm.AttrBuffer{Encoding: opts.encoding}
				}

				req.Serve(selectorvm.AuxStartTagInfo{
					AttrBuffer:  buf,
					SelfClosing: tt == html.SelfClosingTagToken,
				}, func(info selectorvm.MatchInfo[string]) {
					if opts.onMatch != nil {
						opts.onMatch(info.Payload, info.WithContent)
					}
				})
			}

			if tt == html.StartTagToken && (elemNS == selectorvm.SVG || elemNS == selectorvm.MathML) && elemNS != ns.current() {
				ns.push(elemNS)
			}

		case html.EndTagToken:
			nameBytes, _ := z.TagName()
			name := selectorvm.LocalName(string(nameBytes))

			vm.ExecForEndTag(name, func(payload string) {
				if opts.onUnmatch != nil {
					opts.onUnmatch(payload)
				}
			})
			ns.pop(name)
		}
	}
}

// newVMFromAST compiles ast for the given document encoding into a ready
// VM, per spec.md §6's `new(ast, encoding) -> VM` contract.
func newVMFromAST(ast *selectorvm.AST[string], encoding string) (*selectorvm.VM[string], error) {
	return selectorvm.New(ast, encoding)
}

// parseSelectorFlags turns repeated `--selector name=payload` flags (or
// bare `name` selectors, defaulted to payload==name) into an AST.
func parseSelectorFlags(selectors []string) (*selectorvm.AST[string], error) {
	entries := make(map[string]string, len(selectors))

	for _, s := range selectors {
		if idx := strings.LastIndex(s, "="); idx > 0 {
			entries[s[:idx]] = s[idx+1:]
		} else {
			entries[s] = s
		}
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no --selector flags given")
	}

	return selectorvm.ParseAST(entries)
}
