package core

import (
	"time"
)

var bootTasks = []string{
	"Loading Linux kernel version 6.8.9-retro1-1...",
	"Loading initial ramdisk (initramfs)...",
	"Starting systemd-udevd v254.5-1...",
	"Probing hardware...",
	"Detected storage device: /dev/nvme0n1",
	"Detected storage device: /dev/sda",
	"Activating swap on /dev/sda2...",
	"Mounting root filesystem...",
	"Checking file system on /dev/sda1...",
	"Mounting /boot...",
	"Mounting /home...",
	"Mounting /var...",
	"Starting systemd-journald.service...",
	"Starting systemd-tmpfiles-setup-dev.service...",
	"Starting systemd-sysctl.service...",
	"Starting Load Kernel Modules...",
	"Loading kernel modules: i915 ext4 fuse...",
	"Starting Network Manager...",
	"Starting Login Service (systemd-logind)...",
	"Starting Authorization Manager (polkitd)...",
	"Starting User Manager for UID 1000...",
	"Starting Interface...",
}

var logoLines = []string{
	"",
	" ____  _____ _____ ____   ___  ",
	"|  _ \\| ____|_   _|  _ \\ / _ \\ ",
	"| |_) |  _|   | | | |_) | | | |",
	"|  _ <| |___  | | |  _ <| |_| |",
	"|_| \\_\\_____| |_| |_| \\_\\\\___/ ",
	"",
}

const (
	bootSettle     = 200 * time.Millisecond
	logoTyping     = 10 * time.Millisecond
	logoLineGap    = 30 * time.Millisecond
	loginTyping    = 50 * time.Millisecond
	loginLineGap   = 60 * time.Millisecond
	lastLoginStamp = "Mon Jan _2 15:04:05 2006"
)

// BootSequence plays the boot tasks with spinners.
func BootSequence() Routine {
	steps := make([]Routine, 0, 2*len(bootTasks)+1)
	for _, task := range bootTasks {
		steps = append(steps, BootLine(task, ""), Pause(BootLineGap))
	}
	steps = append(steps, Pause(bootSettle))
	return Sequence(steps...)
}

// LogoSequence types the banner in cyan.
func LogoSequence() Routine {
	steps := make([]Routine, 0, 2*len(logoLines))
	for _, line := range logoLines {
		steps = append(steps, TypeLine(line, logoTyping, "cyan"), Pause(logoLineGap))
	}
	return Sequence(steps...)
}

// LoginSequence types a fake console login for user.
func LoginSequence(user string, lastLogin time.Time) Routine {
	return Sequence(
		InstantLine("Retro Linux 6.8.9 (tty1)", "green"), Pause(loginLineGap),
		InstantLine("", ""), Pause(loginLineGap),
		TypeLine("login: "+user, loginTyping, ""), Pause(loginLineGap),
		TypeLine("password: ••••••••", loginTyping, ""), Pause(loginLineGap),
		InstantLine("", ""), Pause(loginLineGap),
		InstantLine("Last login: "+lastLogin.Format(lastLoginStamp)+" on tty1", "white"), Pause(loginLineGap),
		InstantLine("Type 'help' for further information", "yellow"), Pause(loginLineGap),
		InstantLine("", ""),
	)
}

// StartupSequence is the full boot, banner and login script.
func StartupSequence(user string, lastLogin time.Time) Routine {
	return Sequence(BootSequence(), LogoSequence(), LoginSequence(user, lastLogin))
}
