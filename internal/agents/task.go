package agents

// Task is the concrete activity an agent is executing. Values up to
// TaskIdle are declared in priority order; the work subtypes follow.
// TaskNone is the zero value and means "no task".
type Task uint8

const (
	TaskNone Task = iota
	TaskCrisis
	TaskFlee
	TaskFight
	TaskEat
	TaskHospital
	TaskSleep
	TaskSleeping
	TaskPlay
	TaskOrder
	TaskWork
	TaskMeander
	TaskIdle

	// Forms of work
	TaskDoctor
	TaskForage
	TaskPlant
	TaskHarvest
	TaskMine
	TaskChop
	TaskConstruct
	TaskHunt
	TaskMilk
	TaskCook
	TaskFish
	TaskCraft
	TaskClean
	TaskHaul
)

var taskNames = [...]string{
	"None", "Crisis", "Flee", "Fight", "Eat", "Hospital", "Sleep", "Sleeping",
	"Play", "Order", "Work", "Meander", "Idle", "Doctor", "Forage", "Plant",
	"Harvest", "Mine", "Chop", "Construct", "Hunt", "Milk", "Cook", "Fish",
	"Craft", "Clean", "Haul",
}

// String returns the task's name.
func (t Task) String() string {
	if int(t) < len(taskNames) {
		return taskNames[t]
	}
	return "Unknown"
}

// IsWork reports whether t is one of the specific forms of work.
func (t Task) IsWork() bool {
	return t >= TaskDoctor && t <= TaskHaul
}

// Outranks reports whether t takes priority over o.
func (t Task) Outranks(o Task) bool {
	if t == TaskNone {
		return false
	}
	return o == TaskNone || t < o
}

// TaskFor is the fixed motivation → task lookup. For MotivationWork the
// specific work the agent was already doing (prev) is kept; otherwise the
// generic TaskWork is returned for an action system to narrow.
func TaskFor(m Motivation, prev Task) Task {
	switch m {
	case MotivationCrisis:
		return TaskCrisis
	case MotivationOrder:
		return TaskOrder
	case MotivationDanger, MotivationFear:
		return TaskFlee
	case MotivationAngry, MotivationHate:
		return TaskFight
	case MotivationHunger, MotivationThirst:
		return TaskEat
	case MotivationInjured, MotivationSick:
		return TaskHospital
	case MotivationTired:
		return TaskSleep
	case MotivationBored, MotivationHappy, MotivationSad, MotivationLonely, MotivationLove:
		return TaskPlay
	case MotivationWork:
		if prev.IsWork() {
			return prev
		}
		return TaskWork
	case MotivationMeander:
		return TaskMeander
	default:
		return TaskIdle
	}
}

// NextTask is the dispatcher's transition function.
//
//   - a standing order forces TaskOrder regardless of motivation;
//   - an assigned task sticks while the motivation is unchanged (an Order
//     task only while the order stands);
//   - otherwise the motivation is mapped through TaskFor.
func NextTask(prevTask Task, prevMotivation, motivation Motivation, order string) Task {
	if order != "" {
		return TaskOrder
	}
	if prevTask != TaskNone && prevTask != TaskOrder && prevMotivation == motivation {
		return prevTask
	}
	return TaskFor(motivation, prevTask)
}
