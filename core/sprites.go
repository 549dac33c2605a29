package core

// Locomotive sprite tables. Every row of a pattern has the same width and
// ends in blank cells so a train moving left erases its own trail.

const (
	d51Height   = 10
	d51Funnel   = 7
	d51Length   = 83
	d51Patterns = 6

	c51Height   = 11
	c51Funnel   = 7
	c51Length   = 87
	c51Patterns = 6

	logoHeight   = 6
	logoFunnel   = 4
	logoLength   = 84
	logoPatterns = 6
)

var d51Body = []string{
	"      ====        ________                ___________ ",
	"  _D _|  |_______/        \\__I_I_____===__|_________| ",
	"   |(_)---  |   H\\________/ |   |        =|___ ___|   ",
	"   /     |  |   H  |  |     |   |         ||_| |_||   ",
	"  |      |  |   H  |__--------------------| [___] |   ",
	"  | ________|___H__/__|_____/[][]~\\_______|       |   ",
	"  |/ |   |-----------I_____I [][] []  D   |=======|__ ",
}

var d51Wheels = [d51Patterns][3]string{
	{
		"__/ =| o |=-~~\\  /~~\\  /~~\\  /~~\\ ____Y___________|__ ",
		" |/-=|___|=    ||    ||    ||    |_____/~\\___/        ",
		"  \\_/      \\O=====O=====O=====O_/      \\_/            ",
	},
	{
		"__/ =| o |=-~~\\  /~~\\  /~~\\  /~~\\ ____Y___________|__ ",
		" |/-=|___|=O=====O=====O=====O   |_____/~\\___/        ",
		"  \\_/      \\__/  \\__/  \\__/  \\__/      \\_/            ",
	},
	{
		"__/ =| o |=-O=====O=====O=====O \\ ____Y___________|__ ",
		" |/-=|___|=    ||    ||    ||    |_____/~\\___/        ",
		"  \\_/      \\__/  \\__/  \\__/  \\__/      \\_/            ",
	},
	{
		"__/ =| o |=-~O=====O=====O=====O\\ ____Y___________|__ ",
		" |/-=|___|=    ||    ||    ||    |_____/~\\___/        ",
		"  \\_/      \\__/  \\__/  \\__/  \\__/      \\_/            ",
	},
	{
		"__/ =| o |=-~~\\  /~~\\  /~~\\  /~~\\ ____Y___________|__ ",
		" |/-=|___|=   O=====O=====O=====O|_____/~\\___/        ",
		"  \\_/      \\__/  \\__/  \\__/  \\__/      \\_/            ",
	},
	{
		"__/ =| o |=-~~\\  /~~\\  /~~\\  /~~\\ ____Y___________|__ ",
		" |/-=|___|=    ||    ||    ||    |_____/~\\___/        ",
		"  \\_/      \\_O=====O=====O=====O/      \\_/            ",
	},
}

const d51Del = "                                                      "

var d51Coal = [d51Height + 1]string{
	"                              ",
	"                              ",
	"    _________________         ",
	"   _|                \\_____A  ",
	" =|                        |  ",
	" -|                        |  ",
	"__|________________________|_ ",
	"|__________________________|_ ",
	"   |_D__D__D_|  |_D__D__D_|   ",
	"    \\_/   \\_/    \\_/   \\_/    ",
	"                              ",
}

var c51Body = []string{
	"        ___                                            ",
	"       _|_|_  _     __       __             ___________",
	"    D__/   \\_(_)___|  |__H__|  |_____I_Ii_()|_________|",
	"     | `---'   |:: `--'  H  `--'         |  |___ ___|  ",
	"    +|~~~~~~~~++::~~~~~~~H~~+=====+~~~~~~|~~||_| |_||  ",
	"    ||        | ::       H  +=====+      |  |::  ...|  ",
	"|    | _______|_::-----------------[][]-----|       |  ",
}

var c51Wheels = [c51Patterns][4]string{
	{
		"| /~~ ||   |-----/~~~~\\  /[I_____I][][] --|||_______|__",
		"------'|oOo|=[]=-      ||      ||      |  ||=======_|__",
		"/~\\____|___|/~\\_|  O=======O=======O   |__|+-/~\\_|     ",
		"\\_/         \\_/  \\____/  \\____/  \\____/      \\_/       ",
	},
	{
		"| /~~ ||   |-----/~~~~\\  /[I_____I][][] --|||_______|__",
		"------'|oOo|=[]=- O=======O=======O    |  ||=======_|__",
		"/~\\____|___|/~\\_|      ||      ||      |__|+-/~\\_|     ",
		"\\_/         \\_/  \\____/  \\____/  \\____/      \\_/       ",
	},
	{
		"| /~~ ||   |-----/~~~~\\  /[I_____I][][] --|||_______|__",
		"------'|oOo|==[]=- O=======O=======O   |  ||=======_|__",
		"/~\\____|___|/~\\_|      ||      ||      |__|+-/~\\_|     ",
		"\\_/         \\_/  \\____/  \\____/  \\____/      \\_/       ",
	},
	{
		"| /~~ ||   |-----/~~~~\\  /[I_____I][][] --|||_______|__",
		"------'|oOo|===[]=- O=======O=======O  |  ||=======_|__",
		"/~\\____|___|/~\\_|      ||      ||      |__|+-/~\\_|     ",
		"\\_/         \\_/  \\____/  \\____/  \\____/      \\_/       ",
	},
	{
		"| /~~ ||   |-----/~~~~\\  /[I_____I][][] --|||_______|__",
		"------'|oOo|===[]=-    ||      ||      |  ||=======_|__",
		"/~\\____|___|/~\\_|    O=======O=======O |__|+-/~\\_|     ",
		"\\_/         \\_/  \\____/  \\____/  \\____/      \\_/       ",
	},
	{
		"| /~~ ||   |-----/~~~~\\  /[I_____I][][] --|||_______|__",
		"------'|oOo|==[]=-     ||      ||      |  ||=======_|__",
		"/~\\____|___|/~\\_|   O=======O=======O  |__|+-/~\\_|     ",
		"\\_/         \\_/  \\____/  \\____/  \\____/      \\_/       ",
	},
}

const c51Del = "                                                       "

var logoBody = []string{
	"     ++      +------ ",
	"     ||      |+-+ |  ",
	"   /---------|| | |  ",
	"  + ========  +-+ |  ",
}

var logoWheels = [logoPatterns][2]string{
	{" _|--O========O~\\-+  ", "//// \\_/      \\_/    "},
	{" _|--/O========O\\-+  ", "//// \\_/      \\_/    "},
	{" _|--/~O========O-+  ", "//// \\_/      \\_/    "},
	{" _|--/~\\------/~\\-+  ", "//// \\_O========O    "},
	{" _|--/~\\------/~\\-+  ", "//// \\O========O/    "},
	{" _|--/~\\------/~\\-+  ", "//// O========O_/    "},
}

var logoCoal = [logoHeight + 1]string{
	"____                 ",
	"|   \\@@@@@@@@@@@     ",
	"|    \\@@@@@@@@@@@@@_ ",
	"|                  | ",
	"|__________________| ",
	"   (O)       (O)     ",
	"                     ",
}

var logoCar = [logoHeight + 1]string{
	"____________________ ",
	"|  ___ ___ ___ ___ | ",
	"|  |_| |_| |_| |_| | ",
	"|__________________| ",
	"|__________________| ",
	"   (O)        (O)    ",
	"                     ",
}

const logoDel = "                     "

var man = [2][2]string{
	{"", "(O)"},
	{"Help!", "\\O/"},
}

const smokePatterns = 16

var smoke = [2][smokePatterns]string{
	{"(   )", "(    )", "(    )", "(   )", "(  )", "(  )", "( )", "( )", "()", "()", "O", "O", "O", "O", "O", " "},
	{"(@@@)", "(@@@@)", "(@@@@)", "(@@@)", "(@@)", "(@@)", "(@)", "(@)", "@@", "@@", "@", "@", "@", "@", "@", " "},
}

var smokeEraser = [smokePatterns]string{
	"     ", "      ", "      ", "     ", "    ", "    ", "   ", "   ", "  ", "  ", " ", " ", " ", " ", " ", " ",
}

var smokeDY = [smokePatterns]int{2, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
var smokeDX = [smokePatterns]int{-2, -1, 0, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 3, 3, 3}

// d51Frame returns the rows of the D51 engine for a wheel pattern.
func d51Frame(pattern int) [d51Height + 1]string {
	var rows [d51Height + 1]string
	copy(rows[:], d51Body)
	rows[7], rows[8], rows[9] = d51Wheels[pattern][0], d51Wheels[pattern][1], d51Wheels[pattern][2]
	rows[d51Height] = d51Del
	return rows
}

func c51Frame(pattern int) [c51Height + 1]string {
	var rows [c51Height + 1]string
	copy(rows[:], c51Body)
	for i := 0; i < 4; i++ {
		rows[7+i] = c51Wheels[pattern][i]
	}
	rows[c51Height] = c51Del
	return rows
}

func logoFrame(pattern int) [logoHeight + 1]string {
	var rows [logoHeight + 1]string
	copy(rows[:], logoBody)
	rows[4], rows[5] = logoWheels[pattern][0], logoWheels[pattern][1]
	rows[logoHeight] = logoDel
	return rows
}
