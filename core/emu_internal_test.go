package core

import (
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tacvm/instr"
)

var _ = Describe("InstEmulator", func() {
	var (
		ie     instEmulator
		s      *State
		stdout *bytes.Buffer
		stderr *bytes.Buffer
		stdin  string
	)

	run := func(line string) error {
		inst, err := instr.Parse(line, 1)
		Expect(err).NotTo(HaveOccurred())

		return ie.RunInst(inst, s)
	}

	mustRun := func(lines ...string) {
		for _, line := range lines {
			Expect(run(line)).To(Succeed(), line)
		}
	}

	global := func(name string) instr.Value {
		v, ok := s.GlobalFrame.Lookup(name)
		Expect(ok).To(BeTrue(), name)
		Expect(v.Defined).To(BeTrue(), name)

		return v.Value
	}

	BeforeEach(func() {
		ie = instEmulator{}
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
		stdin = ""
		s = NewState(map[string]int{"end": 7, "fn": 3}, stdout, stderr, nil)
	})

	JustBeforeEach(func() {
		s.stdin.Reset(strings.NewReader(stdin))
	})

	Context("when managing variables", func() {
		It("should declare and assign", func() {
			mustRun("DEFVAR GF@a", "MOVE GF@a int@5")

			Expect(global("a")).To(Equal(instr.Int(5)))
		})

		It("should reject reading an unassigned variable", func() {
			mustRun("DEFVAR GF@a")

			Expect(run("WRITE GF@a")).To(MatchError(ErrUndefinedVariable))
		})

		It("should reject an undeclared variable", func() {
			Expect(run("MOVE GF@b int@1")).To(MatchError(ErrUndeclaredVariable))
		})

		It("should reset a redeclared variable", func() {
			mustRun("DEFVAR GF@a", "MOVE GF@a int@5", "DEFVAR GF@a")

			v, _ := s.GlobalFrame.Lookup("a")
			Expect(v.Defined).To(BeFalse())
		})

		It("should reject a missing local frame", func() {
			Expect(run("DEFVAR LF@x")).To(MatchError(ErrFrame))
		})
	})

	Context("when managing frames", func() {
		It("should move the temporary frame onto the stack and back", func() {
			mustRun("CREATEFRAME", "DEFVAR TF@x", "MOVE TF@x int@1", "PUSHFRAME")

			Expect(s.TempFrame).To(BeNil())
			Expect(s.FrameStack).To(HaveLen(1))

			mustRun("MOVE LF@x int@2", "POPFRAME")

			Expect(s.FrameStack).To(BeEmpty())
			v, ok := s.TempFrame.Lookup("x")
			Expect(ok).To(BeTrue())
			Expect(v.Value).To(Equal(instr.Int(2)))
		})

		It("should fail to push without a temporary frame", func() {
			Expect(run("PUSHFRAME")).To(MatchError(ErrFrame))
		})

		It("should fail to pop an empty frame stack", func() {
			Expect(run("POPFRAME")).To(MatchError(ErrFrame))
		})
	})

	Context("when running arithmetic", func() {
		BeforeEach(func() {
			s.GlobalFrame.Declare("r")
		})

		It("should add integers", func() {
			mustRun("ADD GF@r int@2 int@3")
			Expect(global("r")).To(Equal(instr.Int(5)))
		})

		It("should divide integers into a float", func() {
			mustRun("DIV GF@r int@7 int@2")
			Expect(global("r")).To(Equal(instr.Float(3.5)))
		})

		It("should raise on division by zero", func() {
			Expect(run("DIV GF@r int@7 int@0")).To(MatchError(ErrZeroDivision))
			Expect(run("DIV GF@r float@1.0 float@0.0")).To(MatchError(ErrZeroDivision))
		})

		It("should reject mixed operand types", func() {
			Expect(run("ADD GF@r int@1 float@1.0")).To(MatchError(ErrInvalidOperandType))
		})

		It("should compute on the data stack", func() {
			mustRun("PUSHS int@10", "PUSHS int@4", "SUBS")

			Expect(s.DataStack).To(Equal([]instr.Value{instr.Int(6)}))
		})

		It("should fail on an empty data stack", func() {
			mustRun("PUSHS int@10")
			Expect(run("ADDS")).To(MatchError(ErrEmptyDataStack))
		})
	})

	Context("when comparing", func() {
		BeforeEach(func() {
			s.GlobalFrame.Declare("r")
		})

		It("should order booleans with false first", func() {
			mustRun("LT GF@r bool@false bool@true")
			Expect(global("r")).To(Equal(instr.Bool(true)))
		})

		It("should order strings by code points", func() {
			mustRun("GT GF@r string@b string@a")
			Expect(global("r")).To(Equal(instr.Bool(true)))
		})

		It("should refuse to compare different types", func() {
			Expect(run("EQ GF@r int@1 string@1")).To(MatchError(ErrInvalidOperandType))
		})

		It("should combine booleans", func() {
			mustRun("AND GF@r bool@true bool@false")
			Expect(global("r")).To(Equal(instr.Bool(false)))

			mustRun("NOT GF@r GF@r")
			Expect(global("r")).To(Equal(instr.Bool(true)))
		})
	})

	Context("when converting", func() {
		BeforeEach(func() {
			s.GlobalFrame.Declare("r")
		})

		It("should truncate floats", func() {
			mustRun("FLOAT2INT GF@r float@-2.7")
			Expect(global("r")).To(Equal(instr.Int(-2)))
		})

		It("should round half to even", func() {
			mustRun("FLOAT2R2EINT GF@r float@2.5")
			Expect(global("r")).To(Equal(instr.Int(2)))
		})

		It("should round half to odd", func() {
			mustRun("FLOAT2R2OINT GF@r float@2.5")
			Expect(global("r")).To(Equal(instr.Int(3)))
		})

		It("should convert between characters and code points", func() {
			mustRun("INT2CHAR GF@r int@65")
			Expect(global("r")).To(Equal(instr.String("A")))

			mustRun("STRI2INT GF@r string@abc int@1")
			Expect(global("r")).To(Equal(instr.Int(98)))
		})

		It("should reject an invalid code point", func() {
			Expect(run("INT2CHAR GF@r int@-1")).To(MatchError(ErrStringIndex))
		})

		It("should reject an index outside the string", func() {
			Expect(run("STRI2INT GF@r string@abc int@3")).To(MatchError(ErrStringIndex))
		})
	})

	Context("when working with strings", func() {
		BeforeEach(func() {
			s.GlobalFrame.Declare("r")
		})

		It("should concatenate and measure", func() {
			mustRun("CONCAT GF@r string@ab string@cd", "STRLEN GF@r GF@r")
			Expect(global("r")).To(Equal(instr.Int(4)))
		})

		It("should get and set characters", func() {
			mustRun("MOVE GF@r string@abc", "SETCHAR GF@r int@1 string@xyz")
			Expect(global("r")).To(Equal(instr.String("axc")))

			mustRun("GETCHAR GF@r GF@r int@2")
			Expect(global("r")).To(Equal(instr.String("c")))
		})

		It("should reject SETCHAR with an empty replacement", func() {
			mustRun("MOVE GF@r string@abc")
			Expect(run("SETCHAR GF@r int@0 string@")).To(MatchError(ErrStringIndex))
		})

		It("should name types", func() {
			s.GlobalFrame.Declare("u")

			mustRun("TYPE GF@r GF@u")
			Expect(global("r")).To(Equal(instr.String("")))

			mustRun("TYPE GF@r float@1.5")
			Expect(global("r")).To(Equal(instr.String("float")))
		})
	})

	Context("when transferring control", func() {
		It("should jump to a known label", func() {
			mustRun("JUMP end")

			Expect(s.ProgramCounter).To(Equal(7))
			Expect(s.jumped).To(BeTrue())
		})

		It("should raise on an unknown label", func() {
			Expect(run("JUMP nowhere")).To(MatchError(ErrUnknownLabel))
			Expect(run("CALL nowhere")).To(MatchError(ErrUnknownLabel))
		})

		It("should raise on an unknown label even when not jumping", func() {
			Expect(run("JUMPIFEQ nowhere int@1 int@2")).To(MatchError(ErrUnknownLabel))
		})

		It("should call and return", func() {
			s.ProgramCounter = 1
			mustRun("CALL fn")

			Expect(s.ProgramCounter).To(Equal(3))
			Expect(s.CallStack).To(Equal([]int{1}))

			mustRun("RETURN")
			Expect(s.ProgramCounter).To(Equal(2))
			Expect(s.CallStack).To(BeEmpty())
		})

		It("should reject RETURN without a call", func() {
			Expect(run("RETURN")).To(MatchError(ErrInvalidReturn))
		})

		It("should jump on equality", func() {
			mustRun("JUMPIFNEQ end int@1 int@1")
			Expect(s.jumped).To(BeFalse())

			mustRun("PUSHS int@1", "PUSHS int@1", "JUMPIFEQS end")
			Expect(s.ProgramCounter).To(Equal(7))
		})
	})

	Context("when doing I/O", func() {
		BeforeEach(func() {
			stdin = "42\nnot a number\n\"quoted\" tail\n"
			s.GlobalFrame.Declare("r")
		})

		It("should read typed values with zero fallbacks", func() {
			mustRun("READ GF@r int")
			Expect(global("r")).To(Equal(instr.Int(42)))

			mustRun("READ GF@r int")
			Expect(global("r")).To(Equal(instr.Int(0)))

			mustRun("READ GF@r string")
			Expect(global("r")).To(Equal(instr.String("quoted")))

			mustRun("READ GF@r bool")
			Expect(global("r")).To(Equal(instr.Bool(false)))
		})

		It("should reject a non-type witness", func() {
			Expect(run("READ GF@r int@1")).To(MatchError(ErrUnknownDataType))
		})

		It("should write values", func() {
			mustRun("WRITE int@8", "WRITE string@\\032x", "WRITE float@0.5")

			Expect(stdout.String()).To(Equal("8 x0.5"))
		})

		It("should print the price with GROOT", func() {
			mustRun("GROOT")

			Expect(stderr.String()).To(Equal("Price: 0 (0+0)\n"))
		})

		It("should dump the state with BREAK", func() {
			mustRun("PUSHS int@7", "BREAK")

			Expect(stderr.String()).To(ContainSubstring("Data Stack"))
			Expect(stderr.String()).To(ContainSubstring("Frames"))
			Expect(stderr.String()).To(ContainSubstring("int@7"))
			Expect(stdout.String()).To(BeEmpty())
		})
	})

	It("should handle every opcode", func() {
		for _, op := range instr.OpCodes() {
			inst := instr.Inst{OpCode: op, Operands: make([]instr.Operand, op.Arity())}
			err := ie.RunInst(inst, NewState(nil, nil, nil, nil))
			if err != nil {
				Expect(errors.Is(err, instr.ErrUnknownInstruction)).To(BeFalse(), op.String())
			}
		}
	})
})
