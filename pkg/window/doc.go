/*
Copyright 2022 The Numaproj Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
Package window holds the types shared by the window engines. Windows are identified by an integer window id: a
fixed window (sometimes called a tumbling window) of size S covers the timestamps [id*S, (id+1)*S), and a sliding
window of size S and step P covers [id*P, id*P+S).

Assignment follows a left inclusive and right exclusive principle, so an element on a boundary belongs to the window
to the right of the boundary.

Sub packages implement the engines:
  - count: element-count driven tumbling and sliding windows over a single timeline.
  - keyed: the keyed time window engine that tolerates records arriving up to a configured lateness.
*/
package window
