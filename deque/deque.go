/**
 *
 * 利用数组实现的有界双端队列，保存最近推送过的速度幅值快照，
 * 新连接的客户端可以通过 history 消息回放
 *
 */

package deque

import "lbm/model"

type Deque interface {
	// 队列的长度
	Size() int

	// 获取队列中对应下标的快照，0 为队头
	Get(i int) *model.Frame

	// 正向遍历
	Traverse(f func(i int, item *model.Frame))

	// 在队列结尾增加一个元素，队列已满时不做任何操作
	AddLast(item *model.Frame)

	// 在队列结尾删除一个元素
	RemoveLast() *model.Frame

	// 在队列头部增加一个元素，队列已满时不做任何操作
	AddFirst(item *model.Frame)

	// 在队列头部删除一个元素
	RemoveFirst() *model.Frame

	IsFull() bool

	IsEmpty() bool
}
