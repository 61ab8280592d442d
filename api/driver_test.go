package api

import (
	"bytes"

	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tacvm/core"
)

var _ = Describe("Driver", func() {
	var (
		mockCtrl     *gomock.Controller
		mockListener *MockListener
		stdout       *bytes.Buffer
		driver       Driver
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		mockListener = NewMockListener(mockCtrl)
		stdout = &bytes.Buffer{}

		driver = NewDriverBuilder().
			WithEngine(sim.NewSerialEngine()).
			WithCoreBuilder(core.NewBuilder().WithStdout(stdout)).
			WithListener(mockListener).
			Build("Driver")
	})

	AfterEach(func() {
		driver.Wait()
		mockCtrl.Finish()
	})

	Context("when editing breakpoints", func() {
		It("should toggle a breakpoint", func() {
			gomock.InOrder(
				mockListener.EXPECT().BreakpointsChanged([]int{3}),
				mockListener.EXPECT().BreakpointsChanged([]int{}),
			)

			driver.ToggleBreakpoint(3)
			driver.ToggleBreakpoint(3)
		})

		It("should shift breakpoints below added lines", func() {
			mockListener.EXPECT().BreakpointsChanged(gomock.Any()).Times(3)

			driver.AddBreakpoint(3)
			driver.AddBreakpoint(5)
			driver.HandleAddedLines([]int{4})

			Expect(driver.Breakpoints()).To(Equal([]int{3, 6}))
		})

		It("should drop and shift breakpoints on removed lines", func() {
			mockListener.EXPECT().BreakpointsChanged(gomock.Any()).Times(4)

			driver.AddBreakpoint(3)
			driver.AddBreakpoint(6)
			driver.AddBreakpoint(9)
			driver.HandleRemovedLines([]int{3, 7})

			Expect(driver.Breakpoints()).To(Equal([]int{5, 7}))
		})
	})

	Context("when debugging", func() {
		BeforeEach(func() {
			mockListener.EXPECT().BreakpointsChanged(gomock.Any()).AnyTimes()
			driver.AddBreakpoint(4)
		})

		It("should pause, step and end", func() {
			gomock.InOrder(
				mockListener.EXPECT().CurrentLineChanged(4),
				mockListener.EXPECT().StateChanged(gomock.Any()),
				mockListener.EXPECT().CallStackChanged([]CallStackEntry{{Line: 4}}),
			)

			Expect(driver.Start(straightProgram)).To(Succeed())
			driver.Wait()
			Expect(stdout.String()).To(BeEmpty())

			gomock.InOrder(
				mockListener.EXPECT().CurrentLineChanged(5),
				mockListener.EXPECT().StateChanged(gomock.Any()),
				mockListener.EXPECT().CallStackChanged(gomock.Any()),
			)

			Expect(driver.StepLine()).To(Succeed())
			driver.Wait()
			Expect(stdout.String()).To(Equal("1"))

			gomock.InOrder(
				mockListener.EXPECT().CurrentLineChanged(-1),
				mockListener.EXPECT().ProgramEnded(),
			)

			Expect(driver.StepToBreakpoint()).To(Succeed())
			driver.Wait()
			Expect(stdout.String()).To(Equal("12"))
		})

		It("should report runtime errors", func() {
			gomock.InOrder(
				mockListener.EXPECT().CurrentLineChanged(-1),
				mockListener.EXPECT().ProgramEndedWithError(gomock.Any()),
			)

			Expect(driver.Start(".IFJcode17\nWRITE int@1\nPOPS GF@a\n")).To(Succeed())
			driver.Wait()
			Expect(stdout.String()).To(Equal("1"))
		})

		It("should report load errors", func() {
			gomock.InOrder(
				mockListener.EXPECT().CurrentLineChanged(-1),
				mockListener.EXPECT().ProgramEndedWithError(gomock.Any()),
			)

			Expect(driver.Start("no header\n")).To(MatchError(core.ErrMissingHeader))
		})

		It("should stop a paused program", func() {
			mockListener.EXPECT().CurrentLineChanged(4)
			mockListener.EXPECT().StateChanged(gomock.Any())
			mockListener.EXPECT().CallStackChanged(gomock.Any())

			Expect(driver.Start(straightProgram)).To(Succeed())
			driver.Wait()

			gomock.InOrder(
				mockListener.EXPECT().CallStackChanged([]CallStackEntry{}),
				mockListener.EXPECT().CurrentLineChanged(-1),
			)

			driver.Stop()

			Expect(driver.Debugger().Status()).To(Equal(StatusStopped))
			Expect(driver.StepLine()).To(MatchError(ErrNotActive))
		})

		It("should run to the end ignoring breakpoints", func() {
			gomock.InOrder(
				mockListener.EXPECT().CurrentLineChanged(-1),
				mockListener.EXPECT().ProgramEnded(),
			)

			Expect(driver.Run(straightProgram)).To(Succeed())
			driver.Wait()
			Expect(stdout.String()).To(Equal("12"))
		})
	})

	It("should refuse to step without a program", func() {
		Expect(driver.StepLine()).To(MatchError(ErrNotActive))
	})
})
