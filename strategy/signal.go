package strategy

// Signal 策略输出，只有 Buy / None 两种。
type Signal int

const (
	// SignalNone 不动作
	SignalNone Signal = iota
	// SignalBuy 买入信号
	SignalBuy
)

// String 返回信号名称
func (s Signal) String() string {
	switch s {
	case SignalNone:
		return "NONE"
	case SignalBuy:
		return "BUY"
	default:
		return "UNKNOWN"
	}
}

// buyThreshold is the minimum ratio of new price to previous price for
// a buy: strictly more than a 0.1% increase.
const buyThreshold = 1.001

// Evaluate decides whether a buy fires given the previous and the new
// observed price. previousPrice == 0 means "no prior observation", so
// the first tick of a process lifetime never fires. Pure function, no
// side effects; the caller records metrics.
func Evaluate(previousPrice, newPrice float64) Signal {
	if previousPrice > 0 && newPrice > previousPrice*buyThreshold {
		return SignalBuy
	}
	return SignalNone
}
