package proposals

// HedgeTickers are inverse and vol instruments. A hedge idea is
// expressed as bullish shares in the instrument while counting as
// bearish portfolio exposure.
var HedgeTickers = map[string]bool{
	// Long vol
	"VIXY": true,
	// Inverse equity ETFs
	"SH": true, "SDS": true, "SPXU": true, "PSQ": true, "QID": true,
	"SQQQ": true, "RWM": true, "TWM": true, "TZA": true, "DOG": true, "DXD": true,
	// Rates / credit inverse
	"TBF": true, "TMV": true, "TBT": true, "SJB": true,
}

// LeveredInverseEquity are the leveraged inverse equity ETFs; decay
// stacks badly so at most one share position is opened per pass.
var LeveredInverseEquity = map[string]bool{
	"SQQQ": true, "SPXU": true, "TZA": true, "SDS": true,
	"QID": true, "TWM": true, "DXD": true,
}

// InverseProxy maps a ticker to the inverse ETF used to express a
// bearish view in shares when a put is not available.
var InverseProxy = map[string]string{
	"SPLG": "SH", "SPY": "SH",
	"QQQM": "PSQ", "QQQ": "PSQ",
	"IWM": "RWM", "DIA": "DOG",
	"TLT": "TBF", "HYG": "SJB",
}
