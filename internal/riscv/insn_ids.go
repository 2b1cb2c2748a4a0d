package riscv

// InsnID identifies an instruction independently of its encoding; the
// executors key their handler tables on it.
type InsnID uint16

// base integer
const (
	InvalidInsn InsnID = iota
	Lui
	Auipc
	Jal
	Jalr
	Beq
	Bne
	Blt
	Bge
	Bltu
	Bgeu
	Lb
	Lh
	Lw
	Ld
	Lbu
	Lhu
	Lwu
	Sb
	Sh
	Sw
	Sd
	Addi
	Slti
	Sltiu
	Xori
	Ori
	Andi
	Slli
	Srli
	Srai
	Add
	Sub
	Sll
	Slt
	Sltu
	Xor
	Srl
	Sra
	Or
	And
	Fence
	FenceI
	Ecall
	Ebreak
	Csrrw
	Csrrs
	Csrrc
	Csrrwi
	Csrrsi
	Csrrci
	Addiw
	Slliw
	Srliw
	Sraiw
	Addw
	Subw
	Sllw
	Srlw
	Sraw

	// multiply/divide
	Mul
	Mulh
	Mulhsu
	Mulhu
	Div
	Divu
	Rem
	Remu
	Mulw
	Divw
	Divuw
	Remw
	Remuw

	// atomics
	LrW
	ScW
	AmoswapW
	AmoaddW
	AmoxorW
	AmoandW
	AmoorW
	AmominW
	AmomaxW
	AmominuW
	AmomaxuW
	LrD
	ScD
	AmoswapD
	AmoaddD
	AmoxorD
	AmoandD
	AmoorD
	AmominD
	AmomaxD
	AmominuD
	AmomaxuD

	// single precision
	Flw
	Fsw
	FmaddS
	FmsubS
	FnmsubS
	FnmaddS
	FaddS
	FsubS
	FmulS
	FdivS
	FsqrtS
	FsgnjS
	FsgnjnS
	FsgnjxS
	FminS
	FmaxS
	FcvtWS
	FcvtWuS
	FmvXW
	FeqS
	FltS
	FleS
	FclassS
	FcvtSW
	FcvtSWu
	FmvWX
	FcvtLS
	FcvtLuS
	FcvtSL
	FcvtSLu

	// double precision
	Fld
	Fsd
	FmaddD
	FmsubD
	FnmsubD
	FnmaddD
	FaddD
	FsubD
	FmulD
	FdivD
	FsqrtD
	FsgnjD
	FsgnjnD
	FsgnjxD
	FminD
	FmaxD
	FcvtSD
	FcvtDS
	FeqD
	FltD
	FleD
	FclassD
	FcvtWD
	FcvtWuD
	FcvtDW
	FcvtDWu
	FcvtLD
	FcvtLuD
	FmvXD
	FcvtDL
	FcvtDLu
	FmvDX

	// half precision
	Flh
	Fsh
	FmaddH
	FmsubH
	FnmsubH
	FnmaddH
	FaddH
	FsubH
	FmulH
	FdivH
	FsqrtH
	FsgnjH
	FsgnjnH
	FsgnjxH
	FminH
	FmaxH
	FcvtSH
	FcvtHS
	FcvtDH
	FcvtHD
	FeqH
	FltH
	FleH
	FclassH
	FcvtWH
	FcvtWuH
	FcvtHW
	FcvtHWu
	FcvtLH
	FcvtLuH
	FcvtHL
	FcvtHLu
	FmvXH
	FmvHX

	// bfloat16
	FcvtSBF16
	FcvtBF16S

	// compressed
	CAddi4spn
	CFld
	CLw
	CFlw
	CLd
	CFsd
	CSw
	CFsw
	CSd
	CNop
	CAddi
	CJal
	CAddiw
	CLi
	CAddi16sp
	CLui
	CSrli
	CSrai
	CAndi
	CSub
	CXor
	COr
	CAnd
	CSubw
	CAddw
	CJ
	CBeqz
	CBnez
	CSlli
	CFldsp
	CLwsp
	CFlwsp
	CLdsp
	CJr
	CMv
	CEbreak
	CJalr
	CAdd
	CFsdsp
	CSwsp
	CFswsp
	CSdsp
	ExecIt

	// packed SIMD, 16 bit lanes
	Add16
	Radd16
	Uradd16
	Kadd16
	Ukadd16
	Sub16
	Rsub16
	Ursub16
	Ksub16
	Uksub16
	Cras16
	Rcras16
	Urcras16
	Kcras16
	Ukcras16
	Crsa16
	Rcrsa16
	Urcrsa16
	Kcrsa16
	Ukcrsa16
	Sra16
	Srl16
	Sll16
	Kslra16
	Sra16U
	Srl16U
	Ksll16
	Kslra16U
	Srai16
	Srai16U
	Srli16
	Srli16U
	Slli16
	Kslli16
	Cmpeq16
	Scmplt16
	Scmple16
	Ucmplt16
	Ucmple16
	Smul16
	Smulx16
	Umul16
	Umulx16
	Khm16
	Khmx16
	Smin16
	Umin16
	Smax16
	Umax16
	Sclip16
	Uclip16
	Kabs16
	Clrs16
	Clz16
	Clo16

	// packed SIMD, 8 bit lanes
	Add8
	Radd8
	Uradd8
	Kadd8
	Ukadd8
	Sub8
	Rsub8
	Ursub8
	Ksub8
	Uksub8
	Sra8
	Srl8
	Sll8
	Kslra8
	Sra8U
	Srl8U
	Ksll8
	Kslra8U
	Srai8
	Srai8U
	Srli8
	Srli8U
	Slli8
	Kslli8
	Cmpeq8
	Scmplt8
	Scmple8
	Ucmplt8
	Ucmple8
	Smul8
	Smulx8
	Umul8
	Umulx8
	Khm8
	Khmx8
	Smin8
	Umin8
	Smax8
	Umax8
	Sclip8
	Uclip8
	Kabs8
	Clrs8
	Clz8
	Clo8
	Swap8
	Sunpkd810
	Sunpkd820
	Sunpkd830
	Sunpkd831
	Sunpkd832
	Zunpkd810
	Zunpkd820
	Zunpkd830
	Zunpkd831
	Zunpkd832
	Insb

	// packed SIMD, 32 bit and scalar Q15/Q31
	Sclip32
	Uclip32
	Clrs32
	Clz32
	Clo32
	Kabsw
	Kaddh
	Ksubh
	Kaddw
	Ksubw
	Ukaddw
	Uksubw
	Ukaddh
	Uksubh
	Kdmbb
	Kdmbt
	Kdmtt
	Khmbb
	Khmbt
	Khmtt
	Kslraw
	Ksllw
	Kslliw
	Raddw
	Rsubw
	Uraddw
	Ursubw
	Mulr64
	Mulsr64
	Pkbb16
	Pkbt16
	Pktb16
	Pktt16
	Kmada
	Kmaxda
	Kmads
	Kmadrs
	Kmaxds
	Kmsda
	Kmsxda
	Smds
	Smdrs
	Smxds
	Kmabb
	Kmabt
	Kmatt
	Kmmac
	KmmacU
	Kmmsb
	KmmsbU
	Smmul
	SmmulU
	Smaqa
	Umaqa
	SmaqaSu
	Ave
	SraU
	SraiU
	Bitrev
	Bitrevi
	Wext
	Wexti
	Maxw
	Minw
	Bpick

	// packed SIMD, RV64 32 bit lanes
	Add32
	Radd32
	Uradd32
	Kadd32
	Ukadd32
	Sub32
	Rsub32
	Ursub32
	Ksub32
	Uksub32
	Cras32
	Crsa32
	Sra32
	Srl32
	Sll32
	Srai32
	Srli32
	Slli32
	Smin32
	Smax32
	Umin32
	Umax32
	Kabs32

	// vendor performance extension
	Addigp
	Lbgp
	Lbugp
	Sbgp
	Lhgp
	Lhugp
	Lwgp
	Lwugp
	Ldgp
	Shgp
	Swgp
	Sdgp
	LeaH
	LeaW
	LeaD
	LeaBZe
	LeaHZe
	LeaWZe
	LeaDZe
	Bfoz
	Bfos
	Ffb
	Ffzmism
	Ffmism
	Flmism
	Beqc
	Bnec
	Bbc
	Bbs
	Lmw
	Smw

	numInsns
)

// NumInsns number of instruction identifiers, for sizing handler tables
const NumInsns = int(numInsns)
